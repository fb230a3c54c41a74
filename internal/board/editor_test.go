package board

import (
	"errors"
	"reflect"
	"testing"
)

func newTestEditor(t *testing.T) (*Editor, *Store) {
	t.Helper()
	store, _ := newTestStore(t)
	return NewEditor(store, testTable()), store
}

func TestEditorConfirmCommitsSelection(t *testing.T) {
	editor, store := newTestEditor(t)

	state, err := editor.BeginEdit(3)
	if err != nil {
		t.Fatalf("BeginEdit() failed: %v", err)
	}
	if state.Round != 3 || state.Text != "" || len(state.Suggestions) != 0 {
		t.Errorf("unexpected initial state: %+v", state)
	}
	if !editor.IsEditing(3) {
		t.Fatal("round 3 should be editing")
	}

	state, err = editor.Input(3, "just")
	if err != nil {
		t.Fatalf("Input() failed: %v", err)
	}
	want := []string{"Justin Jefferson", "Justin Tucker"}
	if !reflect.DeepEqual(state.Suggestions, want) {
		t.Errorf("Suggestions = %v, want %v", state.Suggestions, want)
	}
	if store.Get(3) != "" {
		t.Error("typing must not change the board")
	}

	if err := editor.Confirm(3, "Justin Jefferson"); err != nil {
		t.Fatalf("Confirm() failed: %v", err)
	}
	if editor.IsEditing(3) {
		t.Error("confirm should leave the editing state")
	}
	if got := store.Get(3); got != "Justin Jefferson" {
		t.Errorf("Get(3) = %q", got)
	}
}

func TestEditorCancelKeepsBoard(t *testing.T) {
	editor, store := newTestEditor(t)
	store.Set(2, "Josh Allen")

	editor.BeginEdit(2)
	editor.Input(2, "Travis")
	editor.Cancel(2)

	if editor.IsEditing(2) {
		t.Error("cancel should leave the editing state")
	}
	if store.Get(2) != "Josh Allen" {
		t.Error("cancel must not change the board")
	}
}

func TestEditorClearEmptiesRound(t *testing.T) {
	editor, store := newTestEditor(t)
	store.Set(4, "Travis Kelce")

	editor.BeginEdit(4)
	if err := editor.Clear(4); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if editor.IsEditing(4) || store.Get(4) != "" {
		t.Error("clear should exit editing and empty the round")
	}
}

func TestEditorErrors(t *testing.T) {
	editor, _ := newTestEditor(t)

	if _, err := editor.BeginEdit(0); !errors.Is(err, ErrInvalidRound) {
		t.Errorf("BeginEdit(0) error = %v", err)
	}
	if _, err := editor.Input(16, "x"); !errors.Is(err, ErrInvalidRound) {
		t.Errorf("Input(16) error = %v", err)
	}
	if _, err := editor.Input(5, "x"); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Input() without BeginEdit error = %v", err)
	}
	if err := editor.Confirm(5, "   "); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("Confirm(blank) error = %v", err)
	}
	if err := editor.Clear(99); !errors.Is(err, ErrInvalidRound) {
		t.Errorf("Clear(99) error = %v", err)
	}
}

func TestEditorTracksSeveralRounds(t *testing.T) {
	editor, _ := newTestEditor(t)
	editor.BeginEdit(9)
	editor.BeginEdit(1)
	editor.Input(9, "kel")

	editing := editor.Editing()
	if len(editing) != 2 || editing[0].Round != 1 || editing[1].Round != 9 {
		t.Fatalf("Editing() = %+v", editing)
	}
	if editing[1].Text != "kel" || len(editing[1].Suggestions) != 1 {
		t.Errorf("unexpected state for round 9: %+v", editing[1])
	}

	editor.Reset()
	if len(editor.Editing()) != 0 {
		t.Error("Reset should drop every edit")
	}
}

func TestEditorWithoutSuggester(t *testing.T) {
	store, _ := newTestStore(t)
	editor := NewEditor(store, nil)

	editor.BeginEdit(1)
	state, err := editor.Input(1, "josh")
	if err != nil {
		t.Fatalf("Input() failed: %v", err)
	}
	if state.Suggestions == nil || len(state.Suggestions) != 0 {
		t.Errorf("expected empty non-nil suggestions, got %#v", state.Suggestions)
	}
}
