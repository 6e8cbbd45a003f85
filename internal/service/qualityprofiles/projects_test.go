package qualityprofiles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"qualis/internal/domain"
	"qualis/internal/domain/models"
	"qualis/internal/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProfileRepo keeps profiles and associations in memory.
type fakeProfileRepo struct {
	profiles     map[string]*models.QualityProfile
	projects     map[string]*models.Component // by uuid, projects only
	associations map[string]map[string]bool   // profileKey -> project uuids
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles:     make(map[string]*models.QualityProfile),
		projects:     make(map[string]*models.Component),
		associations: make(map[string]map[string]bool),
	}
}

func (r *fakeProfileRepo) GetByKey(_ context.Context, key string) (*models.QualityProfile, error) {
	if p, ok := r.profiles[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("could not find a quality profile with key '%s': %w", key, domain.ErrNotFound)
}

func (r *fakeProfileRepo) SelectProjectAssociations(_ context.Context, profileKey string, mode models.SelectionMode, nameQuery string) ([]models.ProjectAssociation, error) {
	var out []models.ProjectAssociation
	for _, p := range r.projects {
		selected := r.associations[profileKey][p.UUID]
		if mode == models.SelectionSelected && !selected {
			continue
		}
		if mode == models.SelectionDeselected && selected {
			continue
		}
		if nameQuery != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(nameQuery)) {
			continue
		}
		out = append(out, models.ProjectAssociation{
			ProjectUUID: p.UUID,
			ProjectKey:  p.Key,
			ProjectName: p.Name,
			Selected:    selected,
		})
	}
	return out, nil
}

func (r *fakeProfileRepo) AddProject(_ context.Context, profileKey, projectUUID string) error {
	if r.associations[profileKey] == nil {
		r.associations[profileKey] = make(map[string]bool)
	}
	r.associations[profileKey][projectUUID] = true
	return nil
}

func (r *fakeProfileRepo) RemoveProject(_ context.Context, profileKey, projectUUID string) error {
	delete(r.associations[profileKey], projectUUID)
	return nil
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *models.QualityProfile) error {
	r.profiles[profile.Key] = profile
	return nil
}

// fakeProjectLookup adapts the profile repo's project map to the component
// repository surface the service needs.
type fakeProjectLookup struct {
	projects map[string]*models.Component
}

func (r *fakeProjectLookup) GetByUUID(_ context.Context, uuid string) (*models.Component, error) {
	if c, ok := r.projects[uuid]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("component id '%s': %w", uuid, domain.ErrNotFound)
}

func (r *fakeProjectLookup) GetByKey(_ context.Context, key string) (*models.Component, error) {
	for _, c := range r.projects {
		if c.Key == key {
			return c, nil
		}
	}
	return nil, fmt.Errorf("component key '%s': %w", key, domain.ErrNotFound)
}

func (r *fakeProjectLookup) SelectSubtree(context.Context, string) ([]models.Component, error) {
	return nil, nil
}

func (r *fakeProjectLookup) SelectExistingKeys(context.Context, []string) (map[string]string, error) {
	return nil, nil
}

func (r *fakeProjectLookup) UpdateKey(context.Context, string, string) error { return nil }

func (r *fakeProjectLookup) Create(_ context.Context, c *models.Component) error {
	r.projects[c.UUID] = c
	return nil
}

// fakeAuthorizer filters against explicit per-user allow sets; an entry under
// role admin implies browse access too.
type fakeAuthorizer struct {
	browse map[string]map[string]bool // userUUID -> project uuids
	admin  map[string]bool            // userUUID -> global admin
}

func (a *fakeAuthorizer) CheckComponentPermission(_ context.Context, userUUID string, role models.Role, component *models.Component) error {
	if role == models.RoleAdmin && a.admin[userUUID] {
		return nil
	}
	if role == models.RoleUser && a.browse[userUUID][component.UUID] {
		return nil
	}
	return fmt.Errorf("insufficient privileges on component '%s': %w", component.Key, domain.ErrForbidden)
}

func (a *fakeAuthorizer) KeepAuthorizedProjects(_ context.Context, userUUID string, _ models.Role, projectUUIDs []string) (map[string]struct{}, error) {
	authorized := make(map[string]struct{})
	for _, uuid := range projectUUIDs {
		if a.admin[userUUID] || a.browse[userUUID][uuid] {
			authorized[uuid] = struct{}{}
		}
	}
	return authorized, nil
}

type fixture struct {
	svc      services.QualityProfileService
	profiles *fakeProfileRepo
	authz    *fakeAuthorizer
}

func newFixture() *fixture {
	profiles := newFakeProfileRepo()
	authz := &fakeAuthorizer{
		browse: make(map[string]map[string]bool),
		admin:  map[string]bool{"admin": true},
	}
	components := &fakeProjectLookup{projects: profiles.projects}
	svc := NewQualityProfileService(profiles, components, authz, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &fixture{svc: svc, profiles: profiles, authz: authz}
}

func (f *fixture) addProfile(key, language string) {
	f.profiles.profiles[key] = &models.QualityProfile{Key: key, Name: "Default", Language: language}
}

func (f *fixture) addProject(uuid, key, name string, visibleTo ...string) {
	f.profiles.projects[uuid] = &models.Component{
		UUID: uuid, Key: key, Name: name, Qualifier: models.QualifierProject,
	}
	for _, user := range visibleTo {
		if f.authz.browse[user] == nil {
			f.authz.browse[user] = make(map[string]bool)
		}
		f.authz.browse[user][uuid] = true
	}
}

func (f *fixture) associate(profileKey, projectUUID string) {
	f.profiles.AddProject(context.Background(), profileKey, projectUUID)
}

func TestListProjectsUnknownProfile(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ListProjects(context.Background(), "admin", &services.ProfileProjectsRequest{
		ProfileKey: "missing",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "could not find a quality profile with key 'missing'")
}

func TestListProjectsValidation(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")

	tests := []struct {
		name string
		req  services.ProfileProjectsRequest
	}{
		{name: "missing profile key", req: services.ProfileProjectsRequest{}},
		{name: "negative page", req: services.ProfileProjectsRequest{ProfileKey: "go-default", Page: -1}},
		{name: "page size over limit", req: services.ProfileProjectsRequest{ProfileKey: "go-default", PageSize: 501}},
		{name: "unknown selection mode", req: services.ProfileProjectsRequest{ProfileKey: "go-default", Selected: "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ListProjects(context.Background(), "admin", &tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestListProjectsSelectionModes(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.addProject("p1", "alpha", "Alpha")
	f.addProject("p2", "beta", "Beta")
	f.addProject("p3", "gamma", "Gamma")
	f.associate("go-default", "p1")

	tests := []struct {
		selected string
		want     []string // expected project keys, in order
	}{
		{selected: "selected", want: []string{"alpha"}},
		{selected: "deselected", want: []string{"beta", "gamma"}},
		{selected: "all", want: []string{"alpha", "beta", "gamma"}},
		{selected: "", want: []string{"alpha", "beta", "gamma"}},
	}

	for _, tt := range tests {
		t.Run("selected="+tt.selected, func(t *testing.T) {
			page, err := f.svc.ListProjects(context.Background(), "admin", &services.ProfileProjectsRequest{
				ProfileKey: "go-default",
				Selected:   tt.selected,
			})
			require.NoError(t, err)

			keys := make([]string, 0, len(page.Results))
			for _, r := range page.Results {
				keys = append(keys, r.ProjectKey)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestListProjectsSelectedFlag(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.addProject("p1", "alpha", "Alpha")
	f.addProject("p2", "beta", "Beta")
	f.associate("go-default", "p1")

	page, err := f.svc.ListProjects(context.Background(), "admin", &services.ProfileProjectsRequest{
		ProfileKey: "go-default",
	})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.True(t, page.Results[0].Selected)
	assert.False(t, page.Results[1].Selected)
}

func TestListProjectsSortsByNameThenUUID(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.addProject("uuid-b", "second", "Same Name")
	f.addProject("uuid-a", "first", "Same Name")
	f.addProject("uuid-c", "other", "Another Name")

	page, err := f.svc.ListProjects(context.Background(), "admin", &services.ProfileProjectsRequest{
		ProfileKey: "go-default",
	})
	require.NoError(t, err)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "uuid-c", page.Results[0].ProjectUUID)
	assert.Equal(t, "uuid-a", page.Results[1].ProjectUUID)
	assert.Equal(t, "uuid-b", page.Results[2].ProjectUUID)
}

func TestListProjectsDropsUnauthorizedSilently(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.addProject("p1", "alpha", "Alpha", "viewer")
	f.addProject("p2", "beta", "Beta") // not visible to viewer
	f.addProject("p3", "gamma", "Gamma", "viewer")

	page, err := f.svc.ListProjects(context.Background(), "viewer", &services.ProfileProjectsRequest{
		ProfileKey: "go-default",
	})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "alpha", page.Results[0].ProjectKey)
	assert.Equal(t, "gamma", page.Results[1].ProjectKey)
}

func TestListProjectsNameQuery(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.addProject("p1", "alpha", "Payment Service")
	f.addProject("p2", "beta", "Billing Service")
	f.addProject("p3", "gamma", "Frontend")

	page, err := f.svc.ListProjects(context.Background(), "admin", &services.ProfileProjectsRequest{
		ProfileKey: "go-default",
		Query:      "service",
	})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Billing Service", page.Results[0].ProjectName)
	assert.Equal(t, "Payment Service", page.Results[1].ProjectName)
}

func TestListProjectsPaging(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	for i := 1; i <= 5; i++ {
		uuid := fmt.Sprintf("p%d", i)
		f.addProject(uuid, fmt.Sprintf("proj-%d", i), fmt.Sprintf("Project %d", i))
	}

	tests := []struct {
		name     string
		page     int
		pageSize int
		want     []string
		more     bool
	}{
		{name: "first page", page: 1, pageSize: 2, want: []string{"proj-1", "proj-2"}, more: true},
		{name: "middle page", page: 2, pageSize: 2, want: []string{"proj-3", "proj-4"}, more: true},
		{name: "short last page", page: 3, pageSize: 2, want: []string{"proj-5"}, more: false},
		{name: "past the end", page: 4, pageSize: 2, want: []string{}, more: false},
		{name: "single page fits all", page: 1, pageSize: 10, want: []string{"proj-1", "proj-2", "proj-3", "proj-4", "proj-5"}, more: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.ListProjects(context.Background(), "admin", &services.ProfileProjectsRequest{
				ProfileKey: "go-default",
				Page:       tt.page,
				PageSize:   tt.pageSize,
			})
			require.NoError(t, err)

			keys := make([]string, 0, len(page.Results))
			for _, r := range page.Results {
				keys = append(keys, r.ProjectKey)
			}
			assert.Equal(t, tt.want, keys)
			assert.Equal(t, tt.more, page.More)
		})
	}
}

func TestAddProjectRequiresAdmin(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.addProject("p1", "alpha", "Alpha", "viewer")

	err := f.svc.AddProject(context.Background(), "viewer", &services.ProfileProjectRequest{
		ProfileKey: "go-default",
		ProjectKey: "alpha",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.False(t, f.profiles.associations["go-default"]["p1"])
}

func TestAddProjectRejectsNonProject(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.profiles.projects["m1"] = &models.Component{
		UUID: "m1", Key: "alpha:module", Name: "Module", Qualifier: models.QualifierModule,
	}

	err := f.svc.AddProject(context.Background(), "admin", &services.ProfileProjectRequest{
		ProfileKey: "go-default",
		ProjectKey: "alpha:module",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddProjectIsIdempotent(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.addProject("p1", "alpha", "Alpha")

	req := &services.ProfileProjectRequest{ProfileKey: "go-default", ProjectID: "p1"}
	require.NoError(t, f.svc.AddProject(context.Background(), "admin", req))
	require.NoError(t, f.svc.AddProject(context.Background(), "admin", req))
	assert.True(t, f.profiles.associations["go-default"]["p1"])
}

func TestRemoveProject(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.addProject("p1", "alpha", "Alpha")
	f.associate("go-default", "p1")

	req := &services.ProfileProjectRequest{ProfileKey: "go-default", ProjectKey: "alpha"}
	require.NoError(t, f.svc.RemoveProject(context.Background(), "admin", req))
	assert.False(t, f.profiles.associations["go-default"]["p1"])

	// Removing again is a no-op
	require.NoError(t, f.svc.RemoveProject(context.Background(), "admin", req))
}

func TestAssociationRequiresExactlyOneProjectRef(t *testing.T) {
	f := newFixture()
	f.addProfile("go-default", "go")
	f.addProject("p1", "alpha", "Alpha")

	tests := []struct {
		name string
		req  services.ProfileProjectRequest
	}{
		{name: "neither", req: services.ProfileProjectRequest{ProfileKey: "go-default"}},
		{name: "both", req: services.ProfileProjectRequest{ProfileKey: "go-default", ProjectID: "p1", ProjectKey: "alpha"}},
		{name: "missing profile key", req: services.ProfileProjectRequest{ProjectKey: "alpha"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.AddProject(context.Background(), "admin", &tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
