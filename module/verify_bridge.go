package module

import (
	"github.com/asmcore/asmcore/cerr"
	"github.com/asmcore/asmcore/verify"
)

// verifyAll hands every non-external function body to the verifier (C4),
// stopping and annotating with the function index at the first failure
// (spec §4.3 "the first failure latches the module result and annotates
// with the function index").
func verifyAll(m *Module, limits Limits) error {
	for i, f := range m.Functions {
		if f.External {
			continue
		}
		env := verify.FuncEnv{
			Signature: f.Signature,
			LocalCount: [4]int{
				int(f.LocalI32), int(f.LocalI64), int(f.LocalF32), int(f.LocalF64),
			},
		}
		code := m.FuncBody(i)
		_, err := verify.Verify(env, code, m.Start+int(f.CodeStart), m, m)
		if err != nil {
			if ce, ok := err.(*cerr.Error); ok {
				ce.FuncIndex = i
				return ce
			}
			return err
		}
	}
	return nil
}
