package discovery

import (
	"regexp"
	"strings"
	"time"
)

// Known DEX program IDs.
const (
	// RaydiumAMMV4 is the Raydium AMM v4 program ID.
	RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	// PumpFun is the pump.fun program ID.
	PumpFun = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
)

// Parser extracts pool initializations from transaction logs.
type Parser interface {
	// ParsePoolInit extracts candidates from one transaction's logs.
	// Logs that mention the program without carrying a recoverable mint
	// yield nothing; the watcher treats an empty result as a non-event.
	ParsePoolInit(logs []string, txSig string, slot int64) []*Candidate
}

// mintPattern extracts a mint reference printed in program logs.
var mintPattern = regexp.MustCompile(`mint[=:]\s*([1-9A-HJ-NP-Za-km-z]{32,44})`)

// PumpFunParser detects pump.fun token creations. The create
// instruction logs the new mint.
type PumpFunParser struct {
	createPattern *regexp.Regexp
}

// NewPumpFunParser creates a pump.fun parser.
func NewPumpFunParser() *PumpFunParser {
	return &PumpFunParser{
		createPattern: regexp.MustCompile(`Program log: Instruction: Create\b`),
	}
}

// ParsePoolInit extracts created mints from pump.fun logs.
func (p *PumpFunParser) ParsePoolInit(logs []string, txSig string, slot int64) []*Candidate {
	var candidates []*Candidate
	inProgram := false
	creating := false

	for _, line := range logs {
		switch {
		case strings.Contains(line, "Program "+PumpFun+" invoke"):
			inProgram = true
			creating = false
			continue
		case strings.Contains(line, "Program "+PumpFun+" success"),
			strings.Contains(line, "Program "+PumpFun+" failed"):
			inProgram = false
			creating = false
			continue
		}
		if !inProgram {
			continue
		}

		if p.createPattern.MatchString(line) {
			creating = true
			continue
		}
		if !creating {
			continue
		}
		if m := mintPattern.FindStringSubmatch(line); m != nil {
			candidates = append(candidates, &Candidate{
				Mint:         m[1],
				Program:      PumpFun,
				TxSignature:  txSig,
				Slot:         slot,
				DiscoveredAt: time.Now().UnixMilli(),
			})
			creating = false
		}
	}
	return candidates
}

// RaydiumParser detects Raydium AMM v4 pool initializations. Only
// transactions whose logs echo the pool's mint are recoverable from the
// log feed alone; the rest are skipped.
type RaydiumParser struct {
	initPattern *regexp.Regexp
	poolPattern *regexp.Regexp
}

// NewRaydiumParser creates a Raydium parser.
func NewRaydiumParser() *RaydiumParser {
	return &RaydiumParser{
		initPattern: regexp.MustCompile(`Program log: initialize2`),
		poolPattern: regexp.MustCompile(`pool[=:]\s*([1-9A-HJ-NP-Za-km-z]{32,44})`),
	}
}

// ParsePoolInit extracts initialized pools from Raydium logs.
func (p *RaydiumParser) ParsePoolInit(logs []string, txSig string, slot int64) []*Candidate {
	var candidates []*Candidate
	initSeen := false
	for _, line := range logs {
		if !strings.Contains(line, RaydiumAMMV4) && !p.initPattern.MatchString(line) && !initSeen {
			continue
		}
		if p.initPattern.MatchString(line) {
			initSeen = true
			continue
		}
		if !initSeen {
			continue
		}
		if m := mintPattern.FindStringSubmatch(line); m != nil {
			c := &Candidate{
				Mint:         m[1],
				Program:      RaydiumAMMV4,
				TxSignature:  txSig,
				Slot:         slot,
				DiscoveredAt: time.Now().UnixMilli(),
			}
			if pm := p.poolPattern.FindStringSubmatch(strings.Join(logs, "\n")); pm != nil {
				c.Pool = pm[1]
			}
			candidates = append(candidates, c)
			initSeen = false
		}
	}
	return candidates
}
