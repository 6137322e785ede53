// Package options defines the declarative per-test configuration and the
// image comparison pipeline driven by it.
//
// # Document Format
//
// Test options are read from test.yaml (or test.cue) in the test directory:
//
//	num_frames: 10
//	output_path: output.txt
//	known_failure: false
//	approximations:
//	  epsilon: 0.0001
//	  number_patterns:
//	    - 'x=([-\d.]+)'
//	image_comparisons:
//	  main:
//	    tolerance: 2
//	    max_outliers: 10
//	  detail:
//	    trigger: fs_command
//	    checks:
//	      - tolerance: 0
//	        max_outliers: 0
//	        filter: 'not(os = "macos")'
//	      - tolerance: 4
//	        max_outliers: 40
//	player_options:
//	  max_execution_duration: 15s
//	  with_renderer:
//	    sample_count: 4
//	required_features:
//	  lzma: true
//	fonts:
//	  sans:
//	    family: Noto Sans
//	    path: NotoSans-Regular.ttf
//
// Unknown keys are rejected at load time. Load runs Validate after decoding;
// syntactic and semantic failures are reported as separate errors.
//
// # Comparison Modes
//
// An image comparison is either simple (tolerance and max_outliers) or
// advanced (an ordered checks list). Mixing both is reported when the
// comparison runs, not at load time.
package options
