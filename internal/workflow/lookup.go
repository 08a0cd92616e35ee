package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jkaninda/resourcebot/internal/domain"
)

// funNames is the fixed set of cosmetic attribution labels. A label is chosen
// at render time, never persisted, and never used for identity.
var funNames = []string{
	"a cool person", "a beautiful soul", "a living legend",
	"an awesome human", "a kind heart", "a genius mind",
	"a resource hero", "a BRACU superstar", "an academic champion",
	"a generous soul", "an inspiring peer",
}

// Match is one lookup hit: the approved record and the key its delete-request
// button must carry.
type Match struct {
	Key    string
	Record domain.Record
}

// lookupQuery extracts the course code from a "!CSE421"-style query.
func lookupQuery(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "!") {
		return "", false
	}
	return domain.NormalizeCourseCode(text[1:]), true
}

// Find returns the well-formed approved records whose course code matches,
// case-insensitively. Matches are key-ordered so repeated calls render the
// same sequence absent mutation.
func (e *Engine) Find(ctx context.Context, courseCode string) ([]Match, error) {
	code := domain.NormalizeCourseCode(courseCode)

	approved, err := e.store.Load(ctx, domain.CollectionApproved)
	if err != nil {
		return nil, fmt.Errorf("loading approved catalog: %w", err)
	}

	keys := make([]string, 0, len(approved))
	for key := range approved {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var matches []Match
	for _, key := range keys {
		rec := approved[key]
		if !rec.WellFormed() {
			continue
		}
		if rec.CourseCode == code {
			matches = append(matches, Match{Key: key, Record: rec})
		}
	}
	return matches, nil
}

// handleLookup renders the matches for a course query, each with its
// attribution label and a Request Delete button.
func (e *Engine) handleLookup(ctx context.Context, actor domain.Actor, code string) error {
	if code == "" {
		e.sendText(ctx, actor.ID, unknownText)
		return nil
	}

	matches, err := e.Find(ctx, code)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		if e.metrics != nil {
			e.metrics.LookupsTotal.WithLabelValues("miss").Inc()
		}
		e.sendText(ctx, actor.ID, fmt.Sprintf(
			"No resources found for %s.\nYou can contribute resources with /upload \U0001F680", code))
		return nil
	}

	if e.metrics != nil {
		e.metrics.LookupsTotal.WithLabelValues("hit").Inc()
	}

	e.sendText(ctx, actor.ID, fmt.Sprintf("\U0001F4DA Resources for %s:\n", code))
	for _, m := range matches {
		caption := fmt.Sprintf("\U0001F464 Shared by %s\nCourse: %s", e.funName(), code)
		e.sendFile(ctx, actor.ID, m.Record.FileKind, m.Record.FileID, caption, [][]Button{{
			{Label: "\U0001F5D1\uFE0F Request Delete", Action: Action{Kind: ActionRequestDelete, Key: m.Key}},
		}})
	}

	e.sendText(ctx, actor.ID,
		"\nYou can use 'Save to Downloads' in Telegram to save files.\n\n"+
			"\U0001F680 Help others! Use /upload to share more resources. Do not upload existing file again.")
	return nil
}

func (e *Engine) funName() string {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return funNames[e.rng.Intn(len(funNames))]
}

// handleCourseList answers /courselist with the distinct course codes that
// currently have approved resources.
func (e *Engine) handleCourseList(ctx context.Context, actor domain.Actor) error {
	approved, err := e.store.Load(ctx, domain.CollectionApproved)
	if err != nil {
		return fmt.Errorf("loading approved catalog: %w", err)
	}

	seen := map[string]bool{}
	var codes []string
	for _, rec := range approved {
		if !rec.WellFormed() || seen[rec.CourseCode] {
			continue
		}
		seen[rec.CourseCode] = true
		codes = append(codes, rec.CourseCode)
	}
	sort.Strings(codes)

	if len(codes) == 0 {
		e.sendText(ctx, actor.ID, "No courses have resources yet. Be the first with /upload \U0001F680")
		return nil
	}

	var b strings.Builder
	b.WriteString("\U0001F4DA Courses with resources:\n")
	for _, code := range codes {
		b.WriteString("\u2022 " + code + "\n")
	}
	b.WriteString("\nType !CourseCode to get the files.")
	e.sendText(ctx, actor.ID, b.String())
	return nil
}

// handleAdminStatus answers /admin with the pending-queue size, for the
// administrator only.
func (e *Engine) handleAdminStatus(ctx context.Context, actor domain.Actor) error {
	if actor.ID != e.adminID {
		e.sendText(ctx, actor.ID, unknownText)
		return nil
	}

	count, err := e.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("counting pending queue: %w", err)
	}

	if count == 0 {
		e.sendText(ctx, actor.ID, "No submissions are waiting for review.")
		return nil
	}
	e.sendText(ctx, actor.ID, fmt.Sprintf("\U0001F4E5 %d submission(s) waiting for review.", count))
	return nil
}
