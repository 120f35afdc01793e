package core

import (
	"encoding/hex"
	"strings"
	"testing"
)

func leavesOfSize(t *testing.T, f *Field, n int) []*FieldElement {
	t.Helper()
	out := make([]*FieldElement, n)
	for i := range out {
		out[i] = f.NewElementFromInt64(int64(i + 1))
	}
	return out
}

// TestMerkleVerifyAllLeaves checks that for power-of-two leaf counts up
// to 2^15, every leaf's authentication path verifies against the root.
func TestMerkleVerifyAllLeaves(t *testing.T) {
	f := testField(t)
	for k := 1; k <= 15; k++ {
		n := 1 << uint(k)
		leaves := leavesOfSize(t, f, n)
		tree, err := NewMerkleTree(leaves)
		if err != nil {
			t.Fatalf("NewMerkleTree(2^%d): %v", k, err)
		}
		root := tree.Root()
		for i := 0; i < n; i++ {
			path, err := tree.Proof(i)
			if err != nil {
				t.Fatalf("Proof(%d): %v", i, err)
			}
			if !VerifyProof(root, leaves[i], path, i, n) {
				t.Errorf("k=%d leaf %d: VerifyProof returned false", k, i)
			}
		}
	}
}

// TestMerkleOddLevels covers the odd-length promotion rule with
// non-power-of-two leaf counts.
func TestMerkleOddLevels(t *testing.T) {
	f := testField(t)
	for _, n := range []int{1, 2, 3, 5, 6, 7, 9, 13} {
		leaves := leavesOfSize(t, f, n)
		tree, err := NewMerkleTree(leaves)
		if err != nil {
			t.Fatalf("NewMerkleTree(%d): %v", n, err)
		}
		root := tree.Root()
		for i := 0; i < n; i++ {
			path, err := tree.Proof(i)
			if err != nil {
				t.Fatalf("Proof(%d): %v", i, err)
			}
			if !VerifyProof(root, leaves[i], path, i, n) {
				t.Errorf("n=%d leaf %d: VerifyProof returned false", n, i)
			}
		}
	}
}

func TestMerkleRejectsWrongValue(t *testing.T) {
	f := testField(t)
	leaves := leavesOfSize(t, f, 4)
	tree, err := NewMerkleTree(leaves)
	if err != nil {
		t.Fatalf("NewMerkleTree: %v", err)
	}
	root := tree.Root()
	path, err := tree.Proof(1)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	wrong := f.NewElementFromInt64(999)
	if VerifyProof(root, wrong, path, 1, 4) {
		t.Error("VerifyProof accepted a tampered leaf value")
	}
}

func TestMerkleRejectsTamperedPath(t *testing.T) {
	f := testField(t)
	leaves := leavesOfSize(t, f, 8)
	tree, err := NewMerkleTree(leaves)
	if err != nil {
		t.Fatalf("NewMerkleTree: %v", err)
	}
	root := tree.Root()
	path, err := tree.Proof(3)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	path[0][0] ^= 0xFF
	if VerifyProof(root, leaves[3], path, 3, 8) {
		t.Error("VerifyProof accepted a tampered authentication path")
	}
}

func TestMerkleRejectsWrongRoot(t *testing.T) {
	f := testField(t)
	leaves := leavesOfSize(t, f, 4)
	tree, err := NewMerkleTree(leaves)
	if err != nil {
		t.Fatalf("NewMerkleTree: %v", err)
	}
	path, err := tree.Proof(0)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	otherLeaves := leavesOfSize(t, f, 4)
	otherLeaves[0] = f.NewElementFromInt64(42)
	otherTree, err := NewMerkleTree(otherLeaves)
	if err != nil {
		t.Fatalf("NewMerkleTree: %v", err)
	}
	if VerifyProof(otherTree.Root(), leaves[0], path, 0, 4) {
		t.Error("VerifyProof accepted a path against an unrelated root")
	}
}

// TestMerkleMatchesWorkedExample checks that leaves [1,2,3,4] under the
// statement's 8-byte field element encoding produce the given root, and
// leaf index 1's authentication path matches the given hash prefixes and
// suffixes.
func TestMerkleMatchesWorkedExample(t *testing.T) {
	f := testField(t)
	leaves := []*FieldElement{
		f.NewElementFromInt64(1),
		f.NewElementFromInt64(2),
		f.NewElementFromInt64(3),
		f.NewElementFromInt64(4),
	}
	tree, err := NewMerkleTree(leaves)
	if err != nil {
		t.Fatalf("NewMerkleTree: %v", err)
	}

	const wantRoot = "8a977dd50bf34d05d66ca85bcc0c2684482c9c3284720c3d1037af248f3c572f"
	if gotRoot := hex.EncodeToString(tree.Root()); gotRoot != wantRoot {
		t.Errorf("root = %s, want %s", gotRoot, wantRoot)
	}

	path, err := tree.Proof(1)
	if err != nil {
		t.Fatalf("Proof(1): %v", err)
	}
	if len(path) != 2 {
		t.Fatalf("len(path) = %d, want 2", len(path))
	}

	checkHashEnds := func(label string, got []byte, prefix, suffix string) {
		t.Helper()
		h := hex.EncodeToString(got)
		if !strings.HasPrefix(h, prefix) {
			t.Errorf("%s = %s, want prefix %s", label, h, prefix)
		}
		if !strings.HasSuffix(h, suffix) {
			t.Errorf("%s = %s, want suffix %s", label, h, suffix)
		}
	}
	checkHashEnds("path[0]", path[0], "7c9fa13", "820f4b8")
	checkHashEnds("path[1]", path[1], "3b95ab1", "b9e6ada")

	if !VerifyProof(tree.Root(), leaves[1], path, 1, 4) {
		t.Error("VerifyProof rejected the worked-example path")
	}
}

func TestMerkleTreeRequiresLeaves(t *testing.T) {
	if _, err := NewMerkleTree(nil); err == nil {
		t.Error("expected error building a tree from zero leaves")
	}
}
