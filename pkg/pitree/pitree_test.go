package pitree

import "testing"

func TestAddAndSearchAcrossPages(t *testing.T) {
	tr := NewWithPageSize(128)
	tr.Add(0, 10, "a")
	tr.Add(500, 510, "b")

	if got := tr.Search(0, 10); len(got) != 1 || got[0].Payload != "a" {
		t.Fatalf("Search(0, 10) = %+v, want [a]", got)
	}
	if got := tr.Search(500, 510); len(got) != 1 || got[0].Payload != "b" {
		t.Fatalf("Search(500, 510) = %+v, want [b]", got)
	}
}

func TestCloneSharesUntilWrite(t *testing.T) {
	tr := New()
	e := tr.Add(0, 10, "a")
	clone := tr.Clone()

	if got := clone.Search(0, 10); len(got) != 1 || got[0].Payload != "a" {
		t.Fatalf("clone did not see pre-existing entry: %+v", got)
	}

	clone.Add(100, 110, "b")
	if n := len(tr.All()); n != 1 {
		t.Fatalf("original mutated by write to clone: %d entries, want 1", n)
	}

	tr.UpdateItem(e, "z")
	found := clone.Search(0, 10)
	if len(found) != 1 || found[0].Payload != "a" {
		t.Fatalf("clone observed original's mutation: %+v, want a", found)
	}
}

func TestUpdateItemReplacesPayload(t *testing.T) {
	tr := New()
	e := tr.Add(0, 10, "a")
	tr.UpdateItem(e, "b")
	got := tr.Search(0, 10)
	if len(got) != 1 || got[0].Payload != "b" {
		t.Fatalf("Search after UpdateItem = %+v, want b", got)
	}
}

// TestUpdateItemAfterClone exercises the handle obtained before a Clone:
// the clone's first write to the shared page deep-clones its sub-tree,
// minting a fresh *itree.Entry for e's interval, so UpdateItem must resolve
// e against the new object rather than the stale pointer.
func TestUpdateItemAfterClone(t *testing.T) {
	tr := New()
	e := tr.Add(0, 10, "a")
	clone := tr.Clone()

	clone.UpdateItem(e, "b")
	got := clone.Search(0, 10)
	if len(got) != 1 || got[0].Payload != "b" {
		t.Fatalf("Search on clone after UpdateItem(pre-clone handle) = %+v, want b", got)
	}
	if got := tr.Search(0, 10); len(got) != 1 || got[0].Payload != "a" {
		t.Fatalf("original observed clone's UpdateItem: %+v, want a", got)
	}
}

// TestRemoveAfterClone is the Remove-side analogue of TestUpdateItemAfterClone.
func TestRemoveAfterClone(t *testing.T) {
	tr := New()
	e := tr.Add(0, 10, "a")
	tr.Add(20, 30, "b")
	clone := tr.Clone()

	clone.Remove(e)
	if got := clone.Search(0, 10); len(got) != 0 {
		t.Fatalf("Search on clone after Remove(pre-clone handle) = %+v, want empty", got)
	}
	if got := tr.Search(0, 10); len(got) != 1 || got[0].Payload != "a" {
		t.Fatalf("original observed clone's Remove: %+v, want a", got)
	}
	if st := clone.Stats(); st.NumEntries != 1 {
		t.Fatalf("clone Stats().NumEntries after Remove = %d, want 1", st.NumEntries)
	}
}

func TestAllEnumeratesEveryPage(t *testing.T) {
	tr := NewWithPageSize(16)
	tr.Add(0, 4, "a")
	tr.Add(100, 104, "b")
	tr.Add(1000, 1004, "c")
	all := tr.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d entries, want 3", len(all))
	}
}

func TestStatsReportsPagesAndEntries(t *testing.T) {
	tr := NewWithPageSize(16)
	tr.Add(0, 4, "a")
	tr.Add(1, 2, "b")
	st := tr.Stats()
	if st.NumEntries != 2 {
		t.Fatalf("Stats().NumEntries = %d, want 2", st.NumEntries)
	}
	if st.Num1Entries != 1 {
		t.Fatalf("Stats().Num1Entries = %d, want 1", st.Num1Entries)
	}
	if st.NumPages != 1 {
		t.Fatalf("Stats().NumPages = %d, want 1", st.NumPages)
	}
}
