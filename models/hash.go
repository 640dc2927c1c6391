package models

// StableHash32 computes the 32-bit FNV-1a hash of folderPath + "|" + name,
// used by rainbow selection tinting. Stable across
// processes and runs.
func StableHash32(folderPath, name string) uint32 {
	const (
		offsetBasis uint32 = 2166136261
		prime       uint32 = 16777619
	)

	h := offsetBasis
	for i := 0; i < len(folderPath); i++ {
		h ^= uint32(folderPath[i])
		h *= prime
	}
	h ^= '|'
	h *= prime
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= prime
	}
	return h
}
