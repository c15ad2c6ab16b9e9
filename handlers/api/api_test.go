package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"diginotes/config"
	"diginotes/models"
)

// fakeStore is an in-memory implementation of every store contract, with the
// same cross-entity semantics as the SQL layer: folder deletion nulls note
// references, tag deletion detaches tags from notes, tag creation is
// idempotent per (owner, name).
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	clock   int64
	users   map[int64]*models.User
	folders map[int64]*models.Folder
	tags    map[int64]*models.Tag
	notes   map[int64]*models.Note
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   map[int64]*models.User{},
		folders: map[int64]*models.Folder{},
		tags:    map[int64]*models.Tag{},
		notes:   map[int64]*models.Note{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// tick returns strictly increasing timestamps so ordering tests are stable.
func (f *fakeStore) tick() time.Time {
	f.clock++
	return time.Unix(1700000000+f.clock, 0)
}

func (f *fakeStore) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, models.ErrDuplicateEmail
		}
	}
	now := f.tick()
	user := &models.User{
		ID: f.id(), Username: username, Email: email, PasswordHash: passwordHash,
		CreatedAt: now, UpdatedAt: now,
	}
	f.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *u
	copied.PasswordHash = ""
	return &copied, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.ProfilePic != nil {
		u.ProfilePic = patch.ProfilePic
	}
	u.UpdatedAt = f.tick()
	copied := *u
	copied.PasswordHash = ""
	return &copied, nil
}

func (f *fakeStore) annotate(n *models.Note) *models.Note {
	copied := *n
	copied.Tags = append([]string{}, n.Tags...)
	sort.Strings(copied.Tags)
	copied.FolderName, copied.FolderColor = nil, nil
	if n.FolderID != nil {
		if folder, ok := f.folders[*n.FolderID]; ok {
			name, color := folder.Name, folder.Color
			copied.FolderName, copied.FolderColor = &name, &color
		}
	}
	return &copied
}

func (f *fakeStore) FindByUser(ctx context.Context, userID int64) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	notes := []models.Note{}
	for _, n := range f.notes {
		if n.UserID == userID {
			notes = append(notes, *f.annotate(n))
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

func (f *fakeStore) findNote(id int64) (*models.Note, error) {
	n, ok := f.notes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return f.annotate(n), nil
}

func (f *fakeStore) FindNoteByID(ctx context.Context, id int64) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findNote(id)
}

func (f *fakeStore) upsertTag(userID int64, name string) *models.Tag {
	for _, t := range f.tags {
		if t.UserID == userID && t.Name == name {
			return t
		}
	}
	tag := &models.Tag{ID: f.id(), Name: name, UserID: userID, CreatedAt: f.tick()}
	f.tags[tag.ID] = tag
	return tag
}

func cleanTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (f *fakeStore) CreateNote(ctx context.Context, input models.NoteInput, userID int64) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.tick()
	tags := cleanTags(input.Tags)
	for _, name := range tags {
		f.upsertTag(userID, name)
	}
	note := &models.Note{
		ID: f.id(), Title: input.Title, Content: input.Content,
		UserID: userID, FolderID: input.FolderID, Tags: tags,
		CreatedAt: now, UpdatedAt: now,
	}
	f.notes[note.ID] = note
	return f.findNote(note.ID)
}

func (f *fakeStore) UpdateNote(ctx context.Context, id int64, update models.NoteUpdate) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	n.Title, n.Content, n.FolderID = update.Title, update.Content, update.FolderID
	if update.Tags != nil {
		tags := cleanTags(*update.Tags)
		for _, name := range tags {
			f.upsertTag(n.UserID, name)
		}
		n.Tags = tags
	}
	n.UpdatedAt = f.tick()
	return f.findNote(id)
}

func (f *fakeStore) DeleteNote(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, id)
	return nil
}

func (f *fakeStore) TogglePin(ctx context.Context, id int64) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	n.IsPinned = !n.IsPinned
	n.UpdatedAt = f.tick()
	return f.findNote(id)
}

func (f *fakeStore) ToggleArchive(ctx context.Context, id int64) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	n.IsArchived = !n.IsArchived
	n.UpdatedAt = f.tick()
	return f.findNote(id)
}

func (f *fakeStore) FindFoldersByUser(ctx context.Context, userID int64) ([]models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folders := []models.Folder{}
	for _, folder := range f.folders {
		if folder.UserID == userID {
			folders = append(folders, *folder)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

func (f *fakeStore) FindFolderByID(ctx context.Context, id int64) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *folder
	return &copied, nil
}

func (f *fakeStore) CreateFolder(ctx context.Context, name, color string, userID int64) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if color == "" {
		color = models.DefaultFolderColor
	}
	now := f.tick()
	folder := &models.Folder{ID: f.id(), Name: name, Color: color, UserID: userID, CreatedAt: now, UpdatedAt: now}
	f.folders[folder.ID] = folder
	copied := *folder
	return &copied, nil
}

func (f *fakeStore) UpdateFolder(ctx context.Context, id int64, name, color string) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	folder.Name, folder.Color = name, color
	folder.UpdatedAt = f.tick()
	copied := *folder
	return &copied, nil
}

func (f *fakeStore) DeleteFolder(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.folders, id)
	for _, n := range f.notes {
		if n.FolderID != nil && *n.FolderID == id {
			n.FolderID = nil
		}
	}
	return nil
}

func (f *fakeStore) FindTagsByUser(ctx context.Context, userID int64) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tags := []models.Tag{}
	for _, t := range f.tags {
		if t.UserID == userID {
			tags = append(tags, *t)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (f *fakeStore) FindTagByID(ctx context.Context, id int64) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tags[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) Upsert(ctx context.Context, userID int64, name string) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *f.upsertTag(userID, name)
	return &copied, nil
}

func (f *fakeStore) DeleteTag(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tags[id]
	if !ok {
		return nil
	}
	delete(f.tags, id)
	for _, n := range f.notes {
		kept := n.Tags[:0]
		for _, name := range n.Tags {
			if name != t.Name {
				kept = append(kept, name)
			}
		}
		n.Tags = kept
	}
	return nil
}

func (f *fakeStore) Popular(ctx context.Context, userID int64, limit int) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, n := range f.notes {
		if n.UserID != userID {
			continue
		}
		for _, name := range n.Tags {
			counts[name]++
		}
	}
	tags := []models.Tag{}
	for _, t := range f.tags {
		if t.UserID == userID {
			copied := *t
			copied.UsageCount = counts[t.Name]
			tags = append(tags, copied)
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].UsageCount != tags[j].UsageCount {
			return tags[i].UsageCount > tags[j].UsageCount
		}
		return tags[i].Name < tags[j].Name
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// noteStoreAdapter renames the fake's note methods onto the NoteStore
// contract, which shares method names with the other contracts.
type noteStoreAdapter struct{ f *fakeStore }

func (a noteStoreAdapter) FindByUser(ctx context.Context, userID int64) ([]models.Note, error) {
	return a.f.FindByUser(ctx, userID)
}
func (a noteStoreAdapter) FindByID(ctx context.Context, id int64) (*models.Note, error) {
	return a.f.FindNoteByID(ctx, id)
}
func (a noteStoreAdapter) Create(ctx context.Context, input models.NoteInput, userID int64) (*models.Note, error) {
	return a.f.CreateNote(ctx, input, userID)
}
func (a noteStoreAdapter) Update(ctx context.Context, id int64, update models.NoteUpdate) (*models.Note, error) {
	return a.f.UpdateNote(ctx, id, update)
}
func (a noteStoreAdapter) Delete(ctx context.Context, id int64) error {
	return a.f.DeleteNote(ctx, id)
}
func (a noteStoreAdapter) TogglePin(ctx context.Context, id int64) (*models.Note, error) {
	return a.f.TogglePin(ctx, id)
}
func (a noteStoreAdapter) ToggleArchive(ctx context.Context, id int64) (*models.Note, error) {
	return a.f.ToggleArchive(ctx, id)
}

type folderStoreAdapter struct{ f *fakeStore }

func (a folderStoreAdapter) FindByUser(ctx context.Context, userID int64) ([]models.Folder, error) {
	return a.f.FindFoldersByUser(ctx, userID)
}
func (a folderStoreAdapter) FindByID(ctx context.Context, id int64) (*models.Folder, error) {
	return a.f.FindFolderByID(ctx, id)
}
func (a folderStoreAdapter) Create(ctx context.Context, name, color string, userID int64) (*models.Folder, error) {
	return a.f.CreateFolder(ctx, name, color, userID)
}
func (a folderStoreAdapter) Update(ctx context.Context, id int64, name, color string) (*models.Folder, error) {
	return a.f.UpdateFolder(ctx, id, name, color)
}
func (a folderStoreAdapter) Delete(ctx context.Context, id int64) error {
	return a.f.DeleteFolder(ctx, id)
}

type tagStoreAdapter struct{ f *fakeStore }

func (a tagStoreAdapter) FindByUser(ctx context.Context, userID int64) ([]models.Tag, error) {
	return a.f.FindTagsByUser(ctx, userID)
}
func (a tagStoreAdapter) FindByID(ctx context.Context, id int64) (*models.Tag, error) {
	return a.f.FindTagByID(ctx, id)
}
func (a tagStoreAdapter) Upsert(ctx context.Context, userID int64, name string) (*models.Tag, error) {
	return a.f.Upsert(ctx, userID, name)
}
func (a tagStoreAdapter) Delete(ctx context.Context, id int64) error {
	return a.f.DeleteTag(ctx, id)
}
func (a tagStoreAdapter) Popular(ctx context.Context, userID int64, limit int) ([]models.Tag, error) {
	return a.f.Popular(ctx, userID, limit)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BodyLimit: 1 << 20},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpiresIn: 3600},
	}
}

func newTestApp(t *testing.T) (*fiber.App, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	app := NewRouter(testConfig(), Stores{
		Users:   store,
		Notes:   noteStoreAdapter{store},
		Folders: folderStoreAdapter{store},
		Tags:    tagStoreAdapter{store},
	})
	return app, store
}

type testEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Results int             `json:"results"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env testEnvelope
	if resp.StatusCode != http.StatusNoContent {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
		}
	}
	return resp, env
}

// register creates a user through the API and returns its token and id.
func register(t *testing.T, app *fiber.App, username, email string) (string, int64) {
	t.Helper()
	resp, env := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, env.Token)

	var data struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return env.Token, data.User.ID
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}
