package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/textutil"
)

func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestRepository(t *testing.T) *EntryRepository {
	t.Helper()
	dbCtx := setupMemoryDB(t)
	return NewEntryRepository(dbCtx).WithClock(steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func mustUpsert(t *testing.T, repo *EntryRepository, sc scope.Scope, src, tgt, sourceText, translated string) EntryRecord {
	t.Helper()
	record, err := repo.Upsert(context.Background(), UpsertParams{
		Scope:          sc,
		SourceLanguage: src,
		TargetLanguage: tgt,
		SourceText:     sourceText,
		TranslatedText: translated,
	})
	if err != nil {
		t.Fatalf("Upsert(%q) error: %v", sourceText, err)
	}
	return record
}

func TestEntryRepositoryUpsertCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	alice := scope.NewPersonal("alice")

	note := "greeting"
	first, err := repo.Upsert(ctx, UpsertParams{
		Scope:          alice,
		SourceLanguage: "en",
		TargetLanguage: "fr",
		SourceText:     "Hello world",
		TranslatedText: "Bonjour le monde",
		Context:        &note,
	})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if first.UseCount != 1 {
		t.Fatalf("expected use count 1, got %d", first.UseCount)
	}
	if first.SourceHash != textutil.Fingerprint("hello world") {
		t.Fatalf("unexpected hash %s", first.SourceHash)
	}
	if first.SourceLength != 11 {
		t.Fatalf("expected source length 11, got %d", first.SourceLength)
	}
	if first.Scope != alice {
		t.Fatalf("unexpected scope %#v", first.Scope)
	}

	second, err := repo.Upsert(ctx, UpsertParams{
		Scope:          alice,
		SourceLanguage: "en",
		TargetLanguage: "fr",
		SourceText:     "  HELLO   world ",
		TranslatedText: "Salut le monde",
	})
	if err != nil {
		t.Fatalf("second Upsert error: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected same entry, got %s and %s", first.ID, second.ID)
	}
	if second.UseCount != 2 {
		t.Fatalf("expected use count 2, got %d", second.UseCount)
	}
	if second.TranslatedText != "Salut le monde" {
		t.Fatalf("expected translation to be replaced, got %q", second.TranslatedText)
	}
	if second.SourceText != "Hello world" {
		t.Fatalf("expected original source text to be kept, got %q", second.SourceText)
	}
	if second.Context == nil || *second.Context != "greeting" {
		t.Fatalf("expected context to survive an upsert without one, got %v", second.Context)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("expected UpdatedAt to advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected CreatedAt to stay %v, got %v", first.CreatedAt, second.CreatedAt)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entry, got %d", count)
	}
}

func TestEntryRepositoryUpsertPartitions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	mustUpsert(t, repo, scope.NewPersonal("alice"), "en", "fr", "Hello", "Bonjour")
	mustUpsert(t, repo, scope.NewPersonal("bob"), "en", "fr", "Hello", "Bonjour")
	mustUpsert(t, repo, scope.NewOrganization("alice", "acme"), "en", "fr", "Hello", "Bonjour")
	mustUpsert(t, repo, scope.NewPersonal("alice"), "en", "de", "Hello", "Hallo")
	mustUpsert(t, repo, scope.NewPersonal("alice"), "en", "fr", "hello", "Salut")

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 distinct entries, got %d", count)
	}
}

func TestEntryRepositoryConcurrentUpsertKeepsOneEntry(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	repo := NewEntryRepository(dbCtx)
	alice := scope.NewPersonal("alice")

	const writers = 16
	var g errgroup.Group
	for i := range writers {
		g.Go(func() error {
			_, err := repo.Upsert(ctx, UpsertParams{
				Scope:          alice,
				SourceLanguage: "en",
				TargetLanguage: "fr",
				SourceText:     "Save changes",
				TranslatedText: fmt.Sprintf("Enregistrer %d", i),
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Upsert error: %v", err)
	}

	entries, err := repo.FindCandidates(ctx, alice, "en", "fr", CandidateFilter{})
	if err != nil {
		t.Fatalf("FindCandidates error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].UseCount != writers {
		t.Fatalf("expected use count %d, got %d", writers, entries[0].UseCount)
	}
}

func TestEntryRepositoryIncrementUseCount(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	alice := scope.NewPersonal("alice")
	created := mustUpsert(t, repo, alice, "en", "fr", "Hello", "Bonjour")

	if err := repo.IncrementUseCount(ctx, created.ID); err != nil {
		t.Fatalf("IncrementUseCount error: %v", err)
	}

	fetched, err := repo.FindVisibleByID(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("FindVisibleByID error: %v", err)
	}
	if fetched == nil || fetched.UseCount != 2 {
		t.Fatalf("expected use count 2, got %#v", fetched)
	}
	if !fetched.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected UpdatedAt to advance")
	}

	if err := repo.IncrementUseCount(ctx, uuid.New()); err != nil {
		t.Fatalf("expected missing entry to be ignored, got %v", err)
	}
}

func TestEntryRepositoryFindVisibleByIDMissing(t *testing.T) {
	repo := newTestRepository(t)
	record, err := repo.FindVisibleByID(context.Background(), scope.NewPersonal("alice"), uuid.New())
	if err != nil {
		t.Fatalf("FindVisibleByID error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %#v", record)
	}
}

func TestEntryRepositoryDeleteOwned(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	alice := scope.NewPersonal("alice")
	aliceAcme := scope.NewOrganization("alice", "acme")
	personal := mustUpsert(t, repo, alice, "en", "fr", "Hello", "Bonjour")
	orgEntry := mustUpsert(t, repo, aliceAcme, "en", "fr", "Goodbye", "Au revoir")

	cases := []struct {
		name    string
		scope   scope.Scope
		id      uuid.UUID
		deleted bool
	}{
		{"other owner", scope.NewPersonal("bob"), personal.ID, false},
		{"other owner same org", scope.NewOrganization("carol", "acme"), orgEntry.ID, false},
		{"org entry from personal scope", alice, orgEntry.ID, false},
		{"org entry from other org", scope.NewOrganization("alice", "initech"), orgEntry.ID, false},
		{"missing", alice, uuid.New(), false},
		{"owner personal", alice, personal.ID, true},
		{"owner personal again", alice, personal.ID, false},
		{"owner org", aliceAcme, orgEntry.ID, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deleted, err := repo.DeleteOwned(ctx, tc.scope, tc.id)
			if err != nil {
				t.Fatalf("DeleteOwned error: %v", err)
			}
			if deleted != tc.deleted {
				t.Fatalf("expected deleted=%v, got %v", tc.deleted, deleted)
			}
		})
	}
}

func TestEntryRepositoryPersonalEntryDeletableFromOrgScope(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	personal := mustUpsert(t, repo, scope.NewPersonal("alice"), "en", "fr", "Hello", "Bonjour")

	deleted, err := repo.DeleteOwned(ctx, scope.NewOrganization("alice", "acme"), personal.ID)
	if err != nil {
		t.Fatalf("DeleteOwned error: %v", err)
	}
	if !deleted {
		t.Fatalf("expected owner to delete personal entry while acting in an organization")
	}
}

func TestEntryRepositoryFindCandidatesLimitKeepsExactMatch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	alice := scope.NewPersonal("alice")

	exact := mustUpsert(t, repo, alice, "en", "fr", "Hello world", "Bonjour le monde")
	for range 3 {
		mustUpsert(t, repo, alice, "en", "fr", "Hello worle", "x")
		mustUpsert(t, repo, alice, "en", "fr", "Hello, world!", "x")
	}
	mustUpsert(t, repo, alice, "en", "fr", "Hello worlds", "x")

	entries, err := repo.FindCandidates(ctx, alice, "en", "fr", CandidateFilter{
		Limit:        2,
		SourceHash:   textutil.Fingerprint("hello  WORLD"),
		SourceLength: 11,
	})
	if err != nil {
		t.Fatalf("FindCandidates error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(entries))
	}
	if entries[0].ID != exact.ID {
		t.Fatalf("expected exact match first, got %q", entries[0].SourceText)
	}
	if entries[1].SourceText != "Hello worle" {
		t.Fatalf("expected the most used same-length entry next, got %q", entries[1].SourceText)
	}

	unranked, err := repo.FindCandidates(ctx, alice, "en", "fr", CandidateFilter{Limit: 1})
	if err != nil {
		t.Fatalf("FindCandidates error: %v", err)
	}
	if len(unranked) != 1 || unranked[0].UseCount != 3 {
		t.Fatalf("expected the most used entry without a query fingerprint, got %#v", unranked)
	}
}

func TestEntryRepositoryFindCandidatesVisibility(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	mustUpsert(t, repo, scope.NewPersonal("alice"), "en", "fr", "alice personal", "x")
	mustUpsert(t, repo, scope.NewPersonal("bob"), "en", "fr", "bob personal", "x")
	mustUpsert(t, repo, scope.NewOrganization("alice", "acme"), "en", "fr", "alice acme", "x")
	mustUpsert(t, repo, scope.NewOrganization("carol", "acme"), "en", "fr", "carol acme", "x")
	mustUpsert(t, repo, scope.NewOrganization("alice", "initech"), "en", "fr", "alice initech", "x")
	mustUpsert(t, repo, scope.NewPersonal("alice"), "en", "de", "alice german", "x")

	cases := []struct {
		name  string
		scope scope.Scope
		want  []string
	}{
		{"alice personal", scope.NewPersonal("alice"), []string{"alice personal"}},
		{"bob personal", scope.NewPersonal("bob"), []string{"bob personal"}},
		{"alice in acme", scope.NewOrganization("alice", "acme"), []string{"alice personal", "alice acme", "carol acme"}},
		{"bob in acme", scope.NewOrganization("bob", "acme"), []string{"bob personal", "alice acme", "carol acme"}},
		{"dave in initech", scope.NewOrganization("dave", "initech"), []string{"alice initech"}},
		{"stranger", scope.NewPersonal("mallory"), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := repo.FindCandidates(ctx, tc.scope, "en", "fr", CandidateFilter{})
			if err != nil {
				t.Fatalf("FindCandidates error: %v", err)
			}
			got := map[string]bool{}
			for _, e := range entries {
				got[e.SourceText] = true
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for _, w := range tc.want {
				if !got[w] {
					t.Fatalf("expected %q in %v", w, got)
				}
			}
		})
	}
}

func TestEntryRepositoryFindCandidatesFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	alice := scope.NewPersonal("alice")

	mustUpsert(t, repo, alice, "en", "fr", "abc", "x")
	mustUpsert(t, repo, alice, "en", "fr", "abcdef", "x")
	popular := mustUpsert(t, repo, alice, "en", "fr", "abcdefghi", "x")
	mustUpsert(t, repo, alice, "en", "fr", "abcdefghi", "y")
	mustUpsert(t, repo, alice, "en", "fr", "abcdefghijklmnop", "x")

	bounded, err := repo.FindCandidates(ctx, alice, "en", "fr", CandidateFilter{LengthBounded: true, MinLength: 5, MaxLength: 10})
	if err != nil {
		t.Fatalf("FindCandidates error: %v", err)
	}
	if len(bounded) != 2 {
		t.Fatalf("expected 2 entries within [5, 10], got %d", len(bounded))
	}

	limited, err := repo.FindCandidates(ctx, alice, "en", "fr", CandidateFilter{Limit: 1})
	if err != nil {
		t.Fatalf("FindCandidates error: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != popular.ID {
		t.Fatalf("expected the most used entry first, got %#v", limited)
	}

	empty, err := repo.FindCandidates(ctx, alice, "en", "fr", CandidateFilter{LengthBounded: true, MinLength: 0, MaxLength: 0})
	if err != nil {
		t.Fatalf("FindCandidates error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestEntryRepositoryClearScoped(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	alice := scope.NewPersonal("alice")
	aliceAcme := scope.NewOrganization("alice", "acme")

	mustUpsert(t, repo, alice, "en", "fr", "one", "un")
	mustUpsert(t, repo, alice, "en", "fr", "two", "deux")
	mustUpsert(t, repo, alice, "en", "de", "one", "eins")
	mustUpsert(t, repo, aliceAcme, "en", "fr", "one", "un")
	mustUpsert(t, repo, scope.NewPersonal("bob"), "en", "fr", "one", "un")

	deleted, err := repo.ClearScoped(ctx, alice, ClearFilter{SourceLanguage: "en", TargetLanguage: "fr"})
	if err != nil {
		t.Fatalf("ClearScoped error: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}

	remaining, err := repo.FindCandidates(ctx, alice, "en", "de", CandidateFilter{})
	if err != nil {
		t.Fatalf("FindCandidates error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected en-de entry to survive, got %d", len(remaining))
	}

	deleted, err = repo.ClearScoped(ctx, aliceAcme, ClearFilter{})
	if err != nil {
		t.Fatalf("ClearScoped error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected only the organization partition to be cleared, got %d", deleted)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected alice en-de and bob to remain, got %d", count)
	}
}

func TestEntryRepositoryAggregate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	alice := scope.NewPersonal("alice")

	empty, err := repo.Aggregate(ctx, alice)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if empty.TotalEntries != 0 || empty.TotalUseCount != 0 || len(empty.PerLanguagePair) != 0 {
		t.Fatalf("expected empty aggregate, got %#v", empty)
	}

	mustUpsert(t, repo, alice, "en", "fr", "one", "un")
	mustUpsert(t, repo, alice, "en", "fr", "one", "un")
	mustUpsert(t, repo, alice, "en", "fr", "two", "deux")
	mustUpsert(t, repo, alice, "en", "de", "one", "eins")
	mustUpsert(t, repo, scope.NewOrganization("carol", "acme"), "en", "es", "one", "uno")

	agg, err := repo.Aggregate(ctx, alice)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if agg.TotalEntries != 3 {
		t.Fatalf("expected 3 entries, got %d", agg.TotalEntries)
	}
	if agg.TotalUseCount != 4 {
		t.Fatalf("expected use count 4, got %d", agg.TotalUseCount)
	}
	if len(agg.PerLanguagePair) != 2 {
		t.Fatalf("expected 2 pairs, got %#v", agg.PerLanguagePair)
	}
	first := agg.PerLanguagePair[0]
	if first.SourceLanguage != "en" || first.TargetLanguage != "fr" || first.EntryCount != 2 || first.UseCount != 3 {
		t.Fatalf("unexpected first pair %#v", first)
	}

	withOrg, err := repo.Aggregate(ctx, scope.NewOrganization("alice", "acme"))
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if withOrg.TotalEntries != 4 || len(withOrg.PerLanguagePair) != 3 {
		t.Fatalf("expected organization entries to be included, got %#v", withOrg)
	}
}

func TestEntryRepositoryListAndFindVisible(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	alice := scope.NewPersonal("alice")

	first := mustUpsert(t, repo, alice, "en", "fr", "one", "un")
	mustUpsert(t, repo, alice, "en", "fr", "two", "deux")
	last := mustUpsert(t, repo, alice, "en", "de", "three", "drei")
	foreign := mustUpsert(t, repo, scope.NewPersonal("bob"), "en", "fr", "four", "quatre")

	all, err := repo.List(ctx, alice, ListFilter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 3 || all[0].ID != last.ID {
		t.Fatalf("expected newest first, got %#v", all)
	}

	page, err := repo.List(ctx, alice, ListFilter{TargetLanguage: "fr", Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(page) != 1 || page[0].ID != first.ID {
		t.Fatalf("expected second fr entry, got %#v", page)
	}

	visible, err := repo.FindVisibleByID(ctx, alice, first.ID)
	if err != nil {
		t.Fatalf("FindVisibleByID error: %v", err)
	}
	if visible == nil || visible.TranslatedText != "un" {
		t.Fatalf("expected visible entry, got %#v", visible)
	}

	hidden, err := repo.FindVisibleByID(ctx, alice, foreign.ID)
	if err != nil {
		t.Fatalf("FindVisibleByID error: %v", err)
	}
	if hidden != nil {
		t.Fatalf("expected foreign entry to be hidden, got %#v", hidden)
	}
}
