// Package harness evaluates golden-artifact test cases.
//
// A test case is a directory holding a configuration file (test.yaml,
// test.yml or test.cue), the expected log (output.txt unless configured
// otherwise) and one reference image per image comparison, named
// {comparison}.expected.png.
//
// The harness does not run the player. Callers hand it the Outputs the
// player produced and receive a Result:
//
//	cases, err := harness.Discover("tests/swfs", "avm2/*")
//	for _, c := range cases {
//	    out, err := harness.LoadOutputs(actualDir, c)
//	    result, err := harness.Evaluate(ctx, c, out, cfg)
//	}
//
// # Outcomes
//
//   - passed: every comparison succeeded
//   - failed: at least one comparison failed
//   - known_failure: failed, and the case is marked known_failure
//   - unexpected_pass: passed, but the case is marked known_failure
//   - ignored: the case is marked ignore and was not evaluated
//
// unexpected_pass counts as a failure so stale known_failure markers are
// noticed.
package harness
