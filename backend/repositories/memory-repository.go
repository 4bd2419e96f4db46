package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryStore returns repositories that keep documents in process memory.
// Documents pass through the BSON codec on every read and write, so callers
// never share state with the store and values round-trip the way they do
// through MongoDB.
func NewMemoryStore() *Store {
	collaborators := NewMemoryCollaboratorRepo()
	projects := NewMemoryProjectRepo()
	tasks := NewMemoryTaskRepo()
	return &Store{
		Collaborators: collaborators,
		Projects:      projects,
		Tasks:         tasks,
		Users:         NewMemoryUserRepo(),
		Ping:          func(context.Context) error { return nil },
		Close:         func(context.Context) error { return nil },
		Clear: func(context.Context) error {
			collaborators.t.clear()
			projects.t.clear()
			tasks.t.clear()
			return nil
		},
	}
}

func clone[T any](doc *T) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// table is a mutex-guarded document map shared by the memory repositories.
type table[T any] struct {
	mu     sync.RWMutex
	docs   map[primitive.ObjectID]*T
	id     func(*T) *primitive.ObjectID
	entity string
	// conflict names the unique field doc shares with other, if any.
	conflict func(doc, other *T) string
}

func newTable[T any](entity string, id func(*T) *primitive.ObjectID, conflict func(doc, other *T) string) *table[T] {
	return &table[T]{docs: map[primitive.ObjectID]*T{}, id: id, entity: entity, conflict: conflict}
}

func (t *table[T]) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.docs = map[primitive.ObjectID]*T{}
}

func (t *table[T]) get(id primitive.ObjectID) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	doc, ok := t.docs[id]
	if !ok {
		return nil, models.NotFound(t.entity)
	}
	return clone(doc)
}

// list returns copies of the matching documents ordered by less.
func (t *table[T]) list(match func(*T) bool, less func(a, b *T) bool) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var hits []*T
	for _, doc := range t.docs {
		if match == nil || match(doc) {
			hits = append(hits, doc)
		}
	}
	if less != nil {
		sort.SliceStable(hits, func(i, j int) bool { return less(hits[i], hits[j]) })
	}

	out := make([]T, 0, len(hits))
	for _, doc := range hits {
		c, err := clone(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (t *table[T]) checkUnique(doc *T) error {
	if t.conflict == nil {
		return nil
	}
	self := *t.id(doc)
	for id, other := range t.docs {
		if id == self {
			continue
		}
		if field := t.conflict(doc, other); field != "" {
			return &models.DuplicateKeyError{Field: field}
		}
	}
	return nil
}

func (t *table[T]) insert(doc *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.id(doc)
	if id.IsZero() {
		*id = primitive.NewObjectID()
	} else if _, exists := t.docs[*id]; exists {
		return &models.DuplicateKeyError{Field: "_id"}
	}
	if err := t.checkUnique(doc); err != nil {
		*id = primitive.NilObjectID
		return err
	}
	stored, err := clone(doc)
	if err != nil {
		return err
	}
	t.docs[*id] = stored
	return nil
}

func (t *table[T]) replace(doc *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := *t.id(doc)
	if _, ok := t.docs[id]; !ok {
		return models.NotFound(t.entity)
	}
	if err := t.checkUnique(doc); err != nil {
		return err
	}
	stored, err := clone(doc)
	if err != nil {
		return err
	}
	t.docs[id] = stored
	return nil
}

func (t *table[T]) delete(id primitive.ObjectID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.docs[id]; !ok {
		return models.NotFound(t.entity)
	}
	delete(t.docs, id)
	return nil
}

// update applies fn to a copy of the stored document under the write lock
// and stores the result when fn succeeds.
func (t *table[T]) update(id primitive.ObjectID, fn func(*T) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok := t.docs[id]
	if !ok {
		return models.NotFound(t.entity)
	}
	next, err := clone(doc)
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	stored, err := clone(next)
	if err != nil {
		return err
	}
	t.docs[id] = stored
	return nil
}

func paginate[T any](items []T, p utils.Pagination) []T {
	start := p.Skip()
	if start >= int64(len(items)) {
		return []T{}
	}
	end := start + p.Limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

type MemoryCollaboratorRepo struct {
	t *table[models.Collaborator]
}

func NewMemoryCollaboratorRepo() *MemoryCollaboratorRepo {
	return &MemoryCollaboratorRepo{t: newTable(collaboratorEntity,
		func(c *models.Collaborator) *primitive.ObjectID { return &c.ID },
		func(c, other *models.Collaborator) string {
			switch {
			case strings.EqualFold(c.Email, other.Email):
				return "email"
			case c.Matricula == other.Matricula:
				return "matricula"
			}
			return ""
		},
	)}
}

func matchCollaborator(f models.CollaboratorFilter) func(*models.Collaborator) bool {
	return func(c *models.Collaborator) bool {
		if f.Active != nil && c.Ativo != *f.Active {
			return false
		}
		if f.Role != "" && c.Cargo != f.Role {
			return false
		}
		if f.Search != "" && !containsFold(c.NomeCompleto, f.Search) && !containsFold(c.Email, f.Search) && !containsFold(c.Matricula, f.Search) {
			return false
		}
		return true
	}
}

func byName(a, b *models.Collaborator) bool {
	return a.NomeCompleto < b.NomeCompleto
}

func (r *MemoryCollaboratorRepo) Find(_ context.Context, filter models.CollaboratorFilter, page utils.Pagination) ([]models.Collaborator, int64, error) {
	all, err := r.t.list(matchCollaborator(filter), byName)
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, page), int64(len(all)), nil
}

func (r *MemoryCollaboratorRepo) FindAll(_ context.Context, filter models.CollaboratorFilter) ([]models.Collaborator, error) {
	return r.t.list(matchCollaborator(filter), byName)
}

func (r *MemoryCollaboratorRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Collaborator, error) {
	return r.t.get(id)
}

func (r *MemoryCollaboratorRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Collaborator, error) {
	set := idSet(ids)
	return r.t.list(func(c *models.Collaborator) bool { return set[c.ID] }, nil)
}

func (r *MemoryCollaboratorRepo) Insert(_ context.Context, c *models.Collaborator) error {
	return r.t.insert(c)
}

func (r *MemoryCollaboratorRepo) Replace(_ context.Context, c *models.Collaborator) error {
	return r.t.replace(c)
}

func (r *MemoryCollaboratorRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.t.delete(id)
}

type MemoryProjectRepo struct {
	t *table[models.Project]
}

func NewMemoryProjectRepo() *MemoryProjectRepo {
	return &MemoryProjectRepo{t: newTable(projectEntity,
		func(p *models.Project) *primitive.ObjectID { return &p.ID }, nil)}
}

func matchProject(f models.ProjectFilter) func(*models.Project) bool {
	return func(p *models.Project) bool {
		if f.Status != "" && p.Status != f.Status {
			return false
		}
		if f.Priority != "" && p.Prioridade != f.Priority {
			return false
		}
		if f.Search != "" && !containsFold(p.Nome, f.Search) && !containsFold(p.Descricao, f.Search) && !containsFold(p.Cliente, f.Search) {
			return false
		}
		return true
	}
}

func (r *MemoryProjectRepo) Find(_ context.Context, filter models.ProjectFilter, page utils.Pagination) ([]models.Project, int64, error) {
	all, err := r.t.list(matchProject(filter), func(a, b *models.Project) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, page), int64(len(all)), nil
}

func (r *MemoryProjectRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	return r.t.get(id)
}

func (r *MemoryProjectRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	set := idSet(ids)
	return r.t.list(func(p *models.Project) bool { return set[p.ID] }, nil)
}

func (r *MemoryProjectRepo) Insert(_ context.Context, p *models.Project) error {
	return r.t.insert(p)
}

func (r *MemoryProjectRepo) Save(_ context.Context, p *models.Project) error {
	next, err := clone(p)
	if err != nil {
		return err
	}
	return r.t.update(p.ID, func(stored *models.Project) error {
		next.Colaboradores = stored.Colaboradores
		*stored = *next
		return nil
	})
}

func (r *MemoryProjectRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.t.delete(id)
}

func (r *MemoryProjectRepo) AddAssignment(_ context.Context, projectID primitive.ObjectID, a models.Assignment) error {
	return r.t.update(projectID, func(p *models.Project) error {
		if err := p.AddCollaborator(a); err != nil {
			return err
		}
		p.UpdatedAt = a.DataEntrada
		return nil
	})
}

func (r *MemoryProjectRepo) CloseAssignment(_ context.Context, projectID, collaboratorID primitive.ObjectID, at time.Time) error {
	return r.t.update(projectID, func(p *models.Project) error {
		if p.RemoveCollaborator(collaboratorID, at) {
			p.UpdatedAt = at
		}
		return nil
	})
}

func (r *MemoryProjectRepo) AllocatedHours(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]float64, error) {
	var set map[primitive.ObjectID]bool
	if ids != nil {
		set = idSet(ids)
	}

	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	hours := map[primitive.ObjectID]float64{}
	for _, p := range r.t.docs {
		for _, a := range p.Colaboradores {
			if !a.Active() || (set != nil && !set[a.Colaborador]) {
				continue
			}
			hours[a.Colaborador] += a.HorasAlocadas
		}
	}
	return hours, nil
}

func (r *MemoryProjectRepo) StatsByStatus(_ context.Context) ([]models.StatusStats, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	byStatus := map[models.ProjectStatus]*models.StatusStats{}
	for _, p := range r.t.docs {
		s, ok := byStatus[p.Status]
		if !ok {
			s = &models.StatusStats{Status: p.Status}
			byStatus[p.Status] = s
		}
		s.Count++
		s.TotalHorasEstimadas += p.HorasEstimadas
		s.TotalHorasRealizadas += p.HorasRealizadas
	}

	stats := make([]models.StatusStats, 0, len(byStatus))
	for _, s := range byStatus {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Status < stats[j].Status })
	return stats, nil
}

func (r *MemoryProjectRepo) Count(_ context.Context) (int64, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return int64(len(r.t.docs)), nil
}

type MemoryTaskRepo struct {
	t *table[models.Task]
}

func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{t: newTable(taskEntity,
		func(t *models.Task) *primitive.ObjectID { return &t.ID }, nil)}
}

func newestTaskFirst(a, b *models.Task) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

func matchTask(f models.TaskFilter) func(*models.Task) bool {
	return func(t *models.Task) bool {
		if f.ProjectID != nil && t.Projeto != *f.ProjectID {
			return false
		}
		if f.ResponsibleID != nil && (t.Responsavel == nil || *t.Responsavel != *f.ResponsibleID) {
			return false
		}
		if f.Status != "" && t.Status != f.Status {
			return false
		}
		if f.Priority != "" && t.Prioridade != f.Priority {
			return false
		}
		return true
	}
}

func (r *MemoryTaskRepo) Find(_ context.Context, filter models.TaskFilter, page utils.Pagination) ([]models.Task, int64, error) {
	all, err := r.t.list(matchTask(filter), newestTaskFirst)
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, page), int64(len(all)), nil
}

func (r *MemoryTaskRepo) FindByProject(_ context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	return r.t.list(matchTask(models.TaskFilter{ProjectID: &projectID}), newestTaskFirst)
}

func (r *MemoryTaskRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	return r.t.get(id)
}

func (r *MemoryTaskRepo) Insert(_ context.Context, t *models.Task) error {
	return r.t.insert(t)
}

func (r *MemoryTaskRepo) Save(_ context.Context, t *models.Task) error {
	next, err := clone(t)
	if err != nil {
		return err
	}
	return r.t.update(t.ID, func(stored *models.Task) error {
		next.Comentarios = stored.Comentarios
		*stored = *next
		return nil
	})
}

func (r *MemoryTaskRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.t.delete(id)
}

func (r *MemoryTaskRepo) AppendComment(_ context.Context, taskID primitive.ObjectID, c models.Comment, at time.Time) error {
	return r.t.update(taskID, func(t *models.Task) error {
		t.Comentarios = append(t.Comentarios, c)
		t.UpdatedAt = at
		return nil
	})
}

func (r *MemoryTaskRepo) SetSubtaskDone(_ context.Context, taskID, subtaskID primitive.ObjectID, done bool, at time.Time) error {
	return r.t.update(taskID, func(t *models.Task) error {
		i := t.Subtask(subtaskID)
		if i < 0 {
			return models.NotFound(subtaskEntity)
		}
		t.Subtarefas[i].Concluida = done
		t.UpdatedAt = at
		return nil
	})
}

type MemoryUserRepo struct {
	t *table[models.User]
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{t: newTable(userEntity,
		func(u *models.User) *primitive.ObjectID { return &u.ID },
		func(u, other *models.User) string {
			if strings.EqualFold(u.Email, other.Email) {
				return "email"
			}
			return ""
		},
	)}
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.t.get(id)
}

func (r *MemoryUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	set := idSet(ids)
	return r.t.list(func(u *models.User) bool { return set[u.ID] }, nil)
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := r.t.list(func(u *models.User) bool { return u.Email == email }, nil)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, models.NotFound(userEntity)
	}
	return &users[0], nil
}

func (r *MemoryUserRepo) Insert(_ context.Context, u *models.User) error {
	return r.t.insert(u)
}

func (r *MemoryUserRepo) TouchLastAccess(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return r.t.update(id, func(u *models.User) error {
		u.UltimoAcesso = &at
		return nil
	})
}
