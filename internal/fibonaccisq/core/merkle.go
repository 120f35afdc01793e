package core

import (
	"crypto/sha256"
	"fmt"
)

// MerkleTree is a binary Merkle tree over field-element leaves, committed
// with SHA-256. Odd levels promote their unpaired last node unchanged to
// the next level rather than duplicating it; padding with duplicated or
// zero leaves would produce different roots and break interoperability.
type MerkleTree struct {
	root   []byte
	leaves [][]byte
	levels [][][]byte
}

// leafByteLen is the fixed width used to serialize field elements into
// Merkle leaves, matching this statement's 8-byte little-endian field
// element wire encoding.
const leafByteLen = 8

// NewMerkleTree builds a Merkle tree over the given field elements.
func NewMerkleTree(elements []*FieldElement) (*MerkleTree, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("cannot build merkle tree from zero elements")
	}

	leaves := make([][]byte, len(elements))
	for i, e := range elements {
		leaves[i] = hashLeaf(e.Bytes(leafByteLen))
	}

	levels := [][][]byte{leaves}
	current := leaves
	for len(current) > 1 {
		next := make([][]byte, 0, (len(current)+1)/2)
		for i := 0; i+1 < len(current); i += 2 {
			next = append(next, hashNodes(current[i], current[i+1]))
		}
		if len(current)%2 == 1 {
			next = append(next, current[len(current)-1])
		}
		levels = append(levels, next)
		current = next
	}

	return &MerkleTree{root: current[0], leaves: leaves, levels: levels}, nil
}

func hashLeaf(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func hashNodes(left, right []byte) []byte {
	buf := make([]byte, 0, len(left)+len(right))
	buf = append(buf, left...)
	buf = append(buf, right...)
	sum := sha256.Sum256(buf)
	return sum[:]
}

// Root returns the Merkle root commitment.
func (t *MerkleTree) Root() []byte {
	out := make([]byte, len(t.root))
	copy(out, t.root)
	return out
}

// Proof returns the authentication path for the leaf at the given index:
// the sibling hashes visited while climbing to the root, bottom-up. Which
// side each sibling sits on is not recorded; it follows from the index
// parity at each level. A promoted, unpaired node contributes no entry,
// since there is nothing to combine with.
func (t *MerkleTree) Proof(index int) ([][]byte, error) {
	if index < 0 || index >= len(t.leaves) {
		return nil, fmt.Errorf("leaf index %d out of range [0, %d)", index, len(t.leaves))
	}

	var path [][]byte
	idx := index
	for level := 0; level < len(t.levels)-1; level++ {
		current := t.levels[level]
		isLastUnpaired := idx == len(current)-1 && len(current)%2 == 1
		if isLastUnpaired {
			// This node was promoted unchanged; no sibling to record.
			idx = idx / 2
			continue
		}
		if idx%2 == 0 {
			path = append(path, current[idx+1])
		} else {
			path = append(path, current[idx-1])
		}
		idx = idx / 2
	}
	return path, nil
}

// VerifyProof recomputes the root from a leaf value and its authentication
// path, and reports whether it matches the given root. At each level the
// sibling combines on the side the index parity dictates: an odd index
// hashes sibling||cur, an even one cur||sibling. Promoted levels consume
// no path entry.
func VerifyProof(root []byte, leaf *FieldElement, path [][]byte, index, numLeaves int) bool {
	hash := hashLeaf(leaf.Bytes(leafByteLen))
	idx := index
	levelSize := numLeaves
	pathPos := 0

	for levelSize > 1 {
		isLastUnpaired := idx == levelSize-1 && levelSize%2 == 1
		if isLastUnpaired {
			idx = idx / 2
			levelSize = (levelSize + 1) / 2
			continue
		}
		if pathPos >= len(path) {
			return false
		}
		sibling := path[pathPos]
		pathPos++
		if idx%2 == 1 {
			hash = hashNodes(sibling, hash)
		} else {
			hash = hashNodes(hash, sibling)
		}
		idx = idx / 2
		levelSize = (levelSize + 1) / 2
	}

	if pathPos != len(path) {
		return false
	}

	if len(hash) != len(root) {
		return false
	}
	for i := range hash {
		if hash[i] != root[i] {
			return false
		}
	}
	return true
}

// MerkleRoot is a convenience function that builds a tree and returns only
// its root.
func MerkleRoot(elements []*FieldElement) ([]byte, error) {
	tree, err := NewMerkleTree(elements)
	if err != nil {
		return nil, fmt.Errorf("failed to build merkle tree: %w", err)
	}
	return tree.Root(), nil
}
