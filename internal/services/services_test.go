package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/repos/testutil"
	"github.com/yungbote/arm-gateway/internal/domain/access"
	types "github.com/yungbote/arm-gateway/internal/domain/catalog"
	accessmod "github.com/yungbote/arm-gateway/internal/modules/access"
	"github.com/yungbote/arm-gateway/internal/modules/sequencer"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
)

type env struct {
	tx  *gorm.DB
	dbc dbctx.Context
	set *repos.Set

	profiles     ProfileService
	suites       SuiteService
	templates    TemplateService
	dictionaries DictionaryService
	complects    ComplectService
	testcases    TestcaseService
	access       AccessService

	mainComplect uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	set := repos.New(db, log)
	seq := sequencer.New(sequencer.Deps{Log: log, Templates: set.Template, Suites: set.Suite})
	main := uuid.New()
	suites := NewSuiteService(db, log, set)
	return &env{
		tx:           tx,
		dbc:          testutil.Ctx(t, tx),
		set:          set,
		profiles:     NewProfileService(db, log, set, suites, accessmod.NewResolver(log, set, nil), main),
		suites:       suites,
		templates:    NewTemplateService(db, log, set, seq),
		dictionaries: NewDictionaryService(db, log, set),
		complects:    NewComplectService(db, log, set),
		testcases:    NewTestcaseService(db, log, set),
		access:       NewAccessService(db, log, set),
		mainComplect: main,
	}
}

func strp(s string) *string { return &s }

func boolp(b bool) *bool { return &b }

func idp(id uuid.UUID) *uuid.UUID { return &id }

func intp(n int) *int { return &n }

func codeOf(err error) string {
	var v *pkgerrors.ValidationError
	if errors.As(err, &v) {
		return v.Code
	}
	return ""
}

func (e *env) newSuite(t *testing.T) *types.Suite {
	t.Helper()
	p, err := e.profiles.Create(e.dbc, ProfileInput{Name: strp("p-" + uuid.NewString()[:8])})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	s, err := e.suites.Create(e.dbc, SuiteInput{ProfileID: &p.ID, Title: strp("suite")})
	if err != nil {
		t.Fatalf("create suite: %v", err)
	}
	return s
}

func TestTemplateMoveScenario(t *testing.T) {
	e := newEnv(t)
	s := e.newSuite(t)
	ids := map[string]uuid.UUID{}
	for _, c := range []string{"A", "B", "C"} {
		tpl, err := e.templates.Create(e.dbc, TemplateInput{SuiteID: &s.ID, Content: strp(c)})
		if err != nil {
			t.Fatalf("create %s: %v", c, err)
		}
		ids[c] = tpl.ID
	}
	moved, err := e.templates.Update(e.dbc, TemplateInput{
		ID:        idp(ids["B"]),
		Placement: sequencer.Placement{Before: strp(sequencer.AnchorFirst)},
	})
	if err != nil {
		t.Fatalf("update B: %v", err)
	}
	if moved.Position != 1 || moved.Version != 2 {
		t.Fatalf("B: position=%d version=%d", moved.Position, moved.Version)
	}
	got := testutil.Positions(t, e.tx, s.ID)
	want := map[string]int{"B": 1, "A": 2, "C": 3}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("positions=%v want %v", got, want)
		}
	}
}

func TestTemplateCreateRequiresSuite(t *testing.T) {
	e := newEnv(t)
	_, err := e.templates.Create(e.dbc, TemplateInput{Content: strp("x")})
	if codeOf(err) != "MISSING_SUITE_ID" {
		t.Fatalf("expected MISSING_SUITE_ID, got %v", err)
	}
	s := e.newSuite(t)
	_, err = e.templates.Create(e.dbc, TemplateInput{
		SuiteID:   &s.ID,
		Placement: sequencer.Placement{Position: intp(1), After: strp(sequencer.AnchorLast)},
	})
	if !errors.Is(err, pkgerrors.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestTemplateCreateKeepsSuppliedID(t *testing.T) {
	e := newEnv(t)
	s := e.newSuite(t)
	want := uuid.New()
	tpl, err := e.templates.Create(e.dbc, TemplateInput{ID: idp(want), SuiteID: &s.ID, Content: strp("a")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.ID != want {
		t.Fatalf("expected id %s, got %s", want, tpl.ID)
	}
	if got, err := e.templates.Fetch(e.dbc, want, false); err != nil || got.Content != "a" {
		t.Fatalf("fetch by supplied id: %+v %v", got, err)
	}

	sp := e.tx.SavePoint("dup")
	if sp.Error != nil {
		t.Fatalf("savepoint: %v", sp.Error)
	}
	_, err = e.templates.Create(e.dbc, TemplateInput{ID: idp(want), SuiteID: &s.ID, Content: strp("b")})
	if !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate id, got %v", err)
	}
	if err := e.tx.RollbackTo("dup").Error; err != nil {
		t.Fatalf("rollback to savepoint: %v", err)
	}
	if got := testutil.Positions(t, e.tx, s.ID); len(got) != 1 {
		t.Fatalf("expected one template after duplicate, got %v", got)
	}
}

func TestTemplateListAndProcess(t *testing.T) {
	e := newEnv(t)
	s := e.newSuite(t)
	for _, c := range []string{"<div>one</div><div>two</div>", "plain", "off"} {
		in := TemplateInput{SuiteID: &s.ID, Content: strp(c)}
		if c == "off" {
			in.IsEnabled = boolp(false)
		}
		if _, err := e.templates.Create(e.dbc, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	res, err := e.templates.List(e.dbc, TemplateListParams{
		SuiteID:    &s.ID,
		ProfileIDs: []uuid.UUID{s.ProfileID},
		IsEnabled:  boolp(true),
		Process:    true,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 2 || len(res.Items) != 2 {
		t.Fatalf("total=%d items=%d", res.Total, len(res.Items))
	}
	first := res.Items[0].(*types.Template)
	if first.Position != 1 || first.Content != "one\ntwo" {
		t.Fatalf("unexpected first item %+v", first)
	}
}

func TestTemplateRemoveTouchesSuite(t *testing.T) {
	e := newEnv(t)
	s := e.newSuite(t)
	tpl, err := e.templates.Create(e.dbc, TemplateInput{SuiteID: &s.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ok, err := e.templates.Remove(e.dbc, []uuid.UUID{tpl.ID}); err != nil || !ok {
		t.Fatalf("Remove: ok=%v err=%v", ok, err)
	}
	if _, err := e.templates.Remove(e.dbc, []uuid.UUID{tpl.ID}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSuiteListCountsTemplates(t *testing.T) {
	e := newEnv(t)
	s := e.newSuite(t)
	empty, err := e.suites.Create(e.dbc, SuiteInput{ProfileID: &s.ProfileID, Title: strp("empty")})
	if err != nil {
		t.Fatalf("create suite: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := e.templates.Create(e.dbc, TemplateInput{SuiteID: &s.ID}); err != nil {
			t.Fatalf("create template: %v", err)
		}
	}
	res, err := e.suites.List(e.dbc, SuiteListParams{ProfileIDs: []uuid.UUID{s.ProfileID}, Paging: Paging{Order: []string{"-templates"}}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("total=%d", res.Total)
	}
	counts := map[uuid.UUID]int64{}
	for _, it := range res.Items {
		v := it.(types.SuiteView)
		counts[v.ID] = v.Stat.Templates
	}
	if counts[s.ID] != 3 || counts[empty.ID] != 0 {
		t.Fatalf("counts=%v", counts)
	}
	if res.Items[0].(types.SuiteView).ID != s.ID {
		t.Fatalf("expected busiest suite first")
	}
}

func TestSuiteCreateRequiresProfile(t *testing.T) {
	e := newEnv(t)
	if _, err := e.suites.Create(e.dbc, SuiteInput{Title: strp("x")}); codeOf(err) != "MISSING_PROFILE_ID" {
		t.Fatalf("expected MISSING_PROFILE_ID, got %v", err)
	}
}

func TestProfileCreateDefaults(t *testing.T) {
	e := newEnv(t)
	main, err := e.complects.Create(e.dbc, ComplectInput{Name: strp("main"), Code: strp("main")})
	if err != nil {
		t.Fatalf("create complect: %v", err)
	}
	e.profiles = NewProfileService(e.set.Profile.DB(), testutil.Logger(t), e.set, e.suites, accessmod.NewResolver(testutil.Logger(t), e.set, nil), main.ID)

	named, err := e.profiles.Create(e.dbc, ProfileInput{Name: strp("Alpha")})
	if err != nil {
		t.Fatalf("create named: %v", err)
	}
	if named.Code != "Alpha" || named.Version != 1 || !named.IsEnabled || named.State != "active" {
		t.Fatalf("unexpected named profile %+v", named)
	}
	anon, err := e.profiles.Create(e.dbc, ProfileInput{})
	if err != nil {
		t.Fatalf("create anonymous: %v", err)
	}
	if len(anon.Code) != 6 {
		t.Fatalf("expected random 6 letter code, got %q", anon.Code)
	}
	if anon.EngineID <= named.EngineID {
		t.Fatalf("engine ids must grow: %d then %d", named.EngineID, anon.EngineID)
	}
	explicit, err := e.profiles.Create(e.dbc, ProfileInput{Name: strp("Beta"), Code: strp("beta-code")})
	if err != nil {
		t.Fatalf("create explicit: %v", err)
	}
	if explicit.Code != "beta-code" {
		t.Fatalf("explicit code lost: %q", explicit.Code)
	}

	got, err := e.complects.Fetch(e.dbc, main.ID)
	if err != nil {
		t.Fatalf("fetch complect: %v", err)
	}
	for _, id := range []uuid.UUID{named.ID, anon.ID, explicit.ID} {
		if !got.HasProfile(id) {
			t.Fatalf("profile %s missing from main complect %v", id, got.ProfileIDs)
		}
	}
}

func TestProfileUpdateValidation(t *testing.T) {
	e := newEnv(t)
	if _, err := e.profiles.Update(e.dbc, ProfileInput{Name: strp("x")}); codeOf(err) != "ID_REQUIRED" {
		t.Fatalf("expected ID_REQUIRED, got %v", err)
	}
	if _, err := e.profiles.Update(e.dbc, ProfileInput{ID: idp(uuid.New())}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	p, err := e.profiles.Create(e.dbc, ProfileInput{Name: strp("p")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.profiles.Update(e.dbc, ProfileInput{ID: &p.ID, State: strp("deleted")}); codeOf(err) != "INVALID_STATE" {
		t.Fatalf("expected INVALID_STATE, got %v", err)
	}
}

func TestProfileCascadeRemove(t *testing.T) {
	e := newEnv(t)
	p, err := e.profiles.Create(e.dbc, ProfileInput{Name: strp("doomed")})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	var suiteIDs, templateIDs []uuid.UUID
	for i := 0; i < 2; i++ {
		s, err := e.suites.Create(e.dbc, SuiteInput{ProfileID: &p.ID})
		if err != nil {
			t.Fatalf("create suite: %v", err)
		}
		tpl, err := e.templates.Create(e.dbc, TemplateInput{SuiteID: &s.ID})
		if err != nil {
			t.Fatalf("create template: %v", err)
		}
		suiteIDs = append(suiteIDs, s.ID)
		templateIDs = append(templateIDs, tpl.ID)
	}
	user, account := uuid.New(), uuid.New()
	if _, err := e.access.CreateUserGrants(e.dbc, user, []ProfilePermissions{{ProfileID: p.ID, Permissions: map[string]any{"dl_read": true}}}); err != nil {
		t.Fatalf("user grant: %v", err)
	}
	if _, err := e.access.CreateAccountProfiles(e.dbc, account, []uuid.UUID{p.ID}); err != nil {
		t.Fatalf("account grant: %v", err)
	}

	if ok, err := e.profiles.Remove(e.dbc, []uuid.UUID{p.ID}); err != nil || !ok {
		t.Fatalf("Remove: ok=%v err=%v", ok, err)
	}

	checks := []struct {
		name  string
		model any
		query string
		arg   any
	}{
		{"suites", &types.Suite{}, "id IN ?", suiteIDs},
		{"templates", &types.Template{}, "id IN ?", templateIDs},
		{"user grants", &access.UserProfileGrant{}, "profile_id = ?", p.ID},
		{"account grants", &access.AccountProfileGrant{}, "profile_id = ?", p.ID},
		{"profiles", &types.Profile{}, "id = ?", p.ID},
	}
	for _, c := range checks {
		var n int64
		if err := e.tx.Model(c.model).Where(c.query, c.arg).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", c.name, err)
		}
		if n != 0 {
			t.Fatalf("%d %s left after cascade", n, c.name)
		}
	}
}
