package itree

import "testing"

func TestAddAndSearchOverlap(t *testing.T) {
	tr := New()
	tr.Add(0, 10, "a")
	tr.Add(10, 20, "b")
	tr.Add(5, 15, "c")

	got := tr.Search(9, 11)
	if len(got) != 3 {
		t.Fatalf("Search(9, 11) returned %d entries, want 3", len(got))
	}
}

func TestAddRejectsEmptyInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Add(5, 5, ...) did not panic")
		}
	}()
	New().Add(5, 5, "x")
}

func TestUpdateItemReplacesPayload(t *testing.T) {
	tr := New()
	e := tr.Add(0, 10, "a")
	tr.UpdateItem(e, "b")
	got := tr.Search(0, 10)
	if len(got) != 1 || got[0].Payload != "b" {
		t.Fatalf("after UpdateItem, Search = %+v, want payload b", got)
	}
}

func TestRemove(t *testing.T) {
	tr := New()
	e := tr.Add(0, 10, "a")
	if !tr.Remove(e) {
		t.Fatalf("Remove(e) = false, want true")
	}
	if tr.Len() != 0 {
		t.Fatalf("Len() after Remove = %d, want 0", tr.Len())
	}
}

func TestRemoveReportsFalseWhenAlreadyRemoved(t *testing.T) {
	tr := New()
	e := tr.Add(0, 10, "a")
	tr.Remove(e)
	if tr.Remove(e) {
		t.Fatalf("second Remove(e) = true, want false")
	}
}

// TestUpdateItemAndRemoveResolveByIDAfterClone covers the stable-id match at
// the itree level directly: a handle from before Clone still resolves to the
// cloned entry (a distinct *Entry object) rather than silently no-oping.
func TestUpdateItemAndRemoveResolveByIDAfterClone(t *testing.T) {
	tr := New()
	e := tr.Add(0, 10, "a")
	clone := tr.Clone()

	if clone.entries[0] == e {
		t.Fatalf("Clone did not allocate a new Entry object")
	}

	clone.UpdateItem(e, "b")
	got := clone.Search(0, 10)
	if len(got) != 1 || got[0].Payload != "b" {
		t.Fatalf("UpdateItem(pre-clone handle) on clone = %+v, want b", got)
	}

	if !clone.Remove(e) {
		t.Fatalf("Remove(pre-clone handle) on clone = false, want true")
	}
	if clone.Len() != 0 {
		t.Fatalf("clone Len() after Remove(pre-clone handle) = %d, want 0", clone.Len())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tr := New()
	tr.Add(0, 10, "a")
	clone := tr.Clone()
	clone.Add(20, 30, "b")
	if tr.Len() != 1 {
		t.Fatalf("original Len() = %d after cloning and mutating clone, want 1", tr.Len())
	}
	if clone.Len() != 2 {
		t.Fatalf("clone Len() = %d, want 2", clone.Len())
	}
}
