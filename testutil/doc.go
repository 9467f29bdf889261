// Package testutil provides fixtures shared by filesig tests: deterministic
// input files, reference signatures computed sequentially, and bounded waits
// for concurrency tests.
//
//	func TestSomething(t *testing.T) {
//	    path, data := testutil.T(t).WriteFile(3*4096 + 1)
//	    want := testutil.BlockDigests(data, 4096, sha256.New)
//	    ...
//	}
package testutil
