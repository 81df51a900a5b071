// Package harness runs destroy searches described by YAML scenarios and
// checks their results.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	objects: "1"
//	max_pool_size: 10000
//	max_objects: 2
//	seed: 1
//	pattern: |
//	  x = 49, y = 49, rule = LifeHistory
//	  49B$49B$...!
//	assertions:
//	  - type: outcome
//	    outcome: SUCCESS
//	  - type: round_stats
//	    round: 1
//	    expect: { unfiltered: 1, lowest_cost: 77 }
//	  - type: solution_placements
//	    placements: [[0, -96, -101], [0, -103, -103]]
//
// The pattern is a LifeHistory pattern file body, parsed exactly as the
// destroy command parses a pattern file.
//
// # Assertion Types
//
//   - outcome: the run ended with the named outcome
//   - rounds: the run took exactly count rounds
//   - round_stats: the statistics of one round match expect (subset match)
//   - solution_placements: the solution places exactly these objects
//   - dies_out: the solved pattern is empty within generations generations
//   - journaled: the journal holds the same outcome and trace as the run
//
// # Deterministic Testing
//
// A scenario fixes the random seed, and its run is journaled to an in-memory
// SQLite database with testutil.DeterministicClock and a fixed run ID. The
// same scenario therefore always produces the same trace, which
// RunWithGolden compares against a golden file.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/two_blocks.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
