package store

import (
	"crypto/sha256"
	"fmt"
)

// ComputeSignatureHash computes a deterministic hash from a symbol's
// semantic identity: name, kind, declared and inferred type, owner and
// static flag. Location changes do NOT affect the hash.
func ComputeSignatureHash(sym *Symbol) string {
	h := sha256.New()
	fmt.Fprintf(h, "name:%s\n", sym.Name)
	fmt.Fprintf(h, "kind:%s\n", sym.Kind)
	fmt.Fprintf(h, "type:%s\n", sym.TypeName)
	fmt.Fprintf(h, "inferred:%s\n", sym.InferredType)
	fmt.Fprintf(h, "owner:%s\n", sym.DeclaringType)
	fmt.Fprintf(h, "static:%v\n", sym.IsStatic)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ContentHash returns the hex SHA-256 of a file's contents.
func ContentHash(src []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(src))
}
