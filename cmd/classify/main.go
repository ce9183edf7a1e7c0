package main

// Classify a lab report from the command line:
//   go run ./cmd/classify -report sample.json -rulesets nv,fa

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/everlof/sonda/internal/classify"
	"github.com/everlof/sonda/internal/report"
	"github.com/everlof/sonda/internal/rules"
)

func main() {
	reportPath := flag.String("report", "", "path to a lab report JSON file")
	rulesetNames := flag.String("rulesets", "nv", "comma-separated preset names (nv, asfalt, fa)")
	rulesetFile := flag.String("ruleset-file", "", "path to an additional ruleset JSON file")
	flag.Parse()

	if *reportPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(*reportPath)
	if err != nil {
		log.Fatalf("read report: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		log.Fatalf("decode report: %v", err)
	}

	var rulesets []rules.RuleSet
	includeHazard := false
	for _, name := range strings.Split(*rulesetNames, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if rules.IsHazardPreset(name) {
			includeHazard = true
			continue
		}
		rs, err := rules.LoadPreset(name)
		if err != nil {
			log.Fatalf("load preset %q: %v", name, err)
		}
		rulesets = append(rulesets, rs)
	}
	if *rulesetFile != "" {
		rs, err := rules.LoadFile(*rulesetFile)
		if err != nil {
			log.Fatalf("load ruleset file: %v", err)
		}
		rulesets = append(rulesets, rs)
	}

	result, err := classify.Sample(&rep, classify.Options{
		RuleSets:      rulesets,
		IncludeHazard: includeHazard,
	})
	if err != nil {
		log.Fatalf("classify: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))
}
