package diagnostics

import "testing"

func TestOpenCreatesSchema(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()
}

func TestRecordAndHistoryRoundTrip(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	if err := store.Record(Record{ModuleName: "a", ErrorCount: 1, DurationMS: 10, BuildID: "b1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Record(Record{ModuleName: "b", ErrorCount: 0, DurationMS: 20, BuildID: "b1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := store.History(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ModuleName != "b" {
		t.Fatalf("expected newest-first ordering, got %q first", records[0].ModuleName)
	}
}

func TestHistoryRespectsLimit(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	for i := 0; i < 5; i++ {
		if err := store.Record(Record{ModuleName: "m", BuildID: "b1"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	records, err := store.History(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
}
