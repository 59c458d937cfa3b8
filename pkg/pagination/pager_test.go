package pagination

import (
	"testing"
)

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		wantErr  bool
	}{
		{name: "default", pageSize: DefaultPageSize},
		{name: "one", pageSize: 1},
		{name: "zero", pageSize: 0, wantErr: true},
		{name: "negative", pageSize: -3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.pageSize)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.PageIndex() != 0 || p.Total() != 0 {
				t.Errorf("new pager = page %d of %d, want page 0 of 0", p.PageIndex(), p.Total())
			}
		})
	}
}

func TestPager_Pages(t *testing.T) {
	collection := sequence(25)

	tests := []struct {
		name         string
		page         int
		wantSlice    []int
		wantPrevious bool
		wantNext     bool
	}{
		{name: "first page", page: 0, wantSlice: sequence(10), wantPrevious: false, wantNext: true},
		{name: "middle page", page: 1, wantSlice: collection[10:20], wantPrevious: true, wantNext: true},
		{name: "last partial page", page: 2, wantSlice: collection[20:25], wantPrevious: true, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := New(10)
			p.SetTotal(len(collection))
			for range tt.page {
				if !p.Advance() {
					t.Fatalf("Advance() refused before page %d", tt.page)
				}
			}

			if got := p.CurrentSlice(collection); !equalInts(got, tt.wantSlice) {
				t.Errorf("CurrentSlice() = %v, want %v", got, tt.wantSlice)
			}
			if got := p.HasPrevious(); got != tt.wantPrevious {
				t.Errorf("HasPrevious() = %v, want %v", got, tt.wantPrevious)
			}
			if got := p.HasNext(); got != tt.wantNext {
				t.Errorf("HasNext() = %v, want %v", got, tt.wantNext)
			}
		})
	}
}

func TestPager_AdvanceAtLastPageIsNoop(t *testing.T) {
	p, _ := New(10)
	p.SetTotal(25)
	p.Advance()
	p.Advance()

	if p.Advance() {
		t.Error("Advance() on the last page should report false")
	}
	if p.PageIndex() != 2 {
		t.Errorf("PageIndex() = %d, want 2", p.PageIndex())
	}
}

func TestPager_RetreatAtFirstPageIsNoop(t *testing.T) {
	p, _ := New(10)
	p.SetTotal(25)

	if p.Retreat() {
		t.Error("Retreat() on page 0 should report false")
	}
	if p.PageIndex() != 0 {
		t.Errorf("PageIndex() = %d, want 0", p.PageIndex())
	}

	p.Advance()
	if !p.Retreat() || p.PageIndex() != 0 {
		t.Errorf("Retreat() from page 1 should land on page 0, got %d", p.PageIndex())
	}
}

func TestPager_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		pageIndex int
		total     int
		pageSize  int
		want      int
	}{
		{name: "collection shrank below page start", pageIndex: 2, total: 5, pageSize: 10, want: 0},
		{name: "one page back", pageIndex: 2, total: 15, pageSize: 10, want: 1},
		{name: "exact boundary", pageIndex: 1, total: 10, pageSize: 10, want: 0},
		{name: "valid page untouched", pageIndex: 1, total: 11, pageSize: 10, want: 1},
		{name: "empty collection", pageIndex: 3, total: 0, pageSize: 10, want: 0},
		{name: "page zero untouched", pageIndex: 0, total: 0, pageSize: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pager{pageSize: tt.pageSize, pageIndex: tt.pageIndex, total: tt.total}
			p.Normalize()
			if p.PageIndex() != tt.want {
				t.Errorf("PageIndex() after Normalize = %d, want %d", p.PageIndex(), tt.want)
			}

			p.Normalize()
			if p.PageIndex() != tt.want {
				t.Errorf("second Normalize moved index to %d", p.PageIndex())
			}
		})
	}
}

func TestPager_SetTotalClampsIndex(t *testing.T) {
	p, _ := New(10)
	p.SetTotal(25)
	p.Advance()
	p.Advance()

	p.SetTotal(5)
	if p.PageIndex() != 0 {
		t.Errorf("PageIndex() = %d, want 0", p.PageIndex())
	}
	if got := p.CurrentSlice(sequence(5)); len(got) != 5 {
		t.Errorf("len(CurrentSlice()) = %d, want 5", len(got))
	}

	p.SetTotal(-1)
	if p.Total() != 0 {
		t.Errorf("Total() = %d, want 0", p.Total())
	}
}

func TestPager_EmptyCollection(t *testing.T) {
	p, _ := New(10)

	if got := p.CurrentSlice(nil); len(got) != 0 {
		t.Errorf("CurrentSlice(nil) = %v, want empty", got)
	}
	if p.HasPrevious() || p.HasNext() {
		t.Error("empty collection should have no neighbours")
	}
	if p.Advance() {
		t.Error("Advance() on empty collection should be a no-op")
	}
	if p.PageCount() != 0 {
		t.Errorf("PageCount() = %d, want 0", p.PageCount())
	}
}

func TestPager_CurrentSliceCopies(t *testing.T) {
	collection := sequence(3)
	p, _ := New(10)
	p.SetTotal(len(collection))

	got := p.CurrentSlice(collection)
	got[0] = 99
	if collection[0] != 0 {
		t.Error("CurrentSlice() should not alias the collection")
	}
}

func TestPager_Reset(t *testing.T) {
	p, _ := New(2)
	p.SetTotal(7)
	p.Advance()
	p.Advance()

	p.Reset()
	if p.PageIndex() != 0 {
		t.Errorf("PageIndex() after Reset = %d, want 0", p.PageIndex())
	}
	if p.PageCount() != 4 {
		t.Errorf("PageCount() = %d, want 4", p.PageCount())
	}
}
