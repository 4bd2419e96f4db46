package models

// CollaboratorRole is the job title (cargo) of a collaborator.
type CollaboratorRole string

const (
	RoleDeveloper      CollaboratorRole = "Desenvolvedor"
	RoleDesigner       CollaboratorRole = "Designer"
	RoleProjectManager CollaboratorRole = "Gerente de Projeto"
	RoleAnalyst        CollaboratorRole = "Analista"
	RoleQA             CollaboratorRole = "QA"
	RoleDevOps         CollaboratorRole = "DevOps"
	RoleScrumMaster    CollaboratorRole = "Scrum Master"
	RoleProductOwner   CollaboratorRole = "Product Owner"
	RoleIntern         CollaboratorRole = "Estagiário"
)

func (r CollaboratorRole) Valid() bool {
	switch r {
	case RoleDeveloper, RoleDesigner, RoleProjectManager, RoleAnalyst, RoleQA,
		RoleDevOps, RoleScrumMaster, RoleProductOwner, RoleIntern:
		return true
	}
	return false
}

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planejamento"
	ProjectInProgress ProjectStatus = "em_andamento"
	ProjectPaused     ProjectStatus = "pausado"
	ProjectDone       ProjectStatus = "concluido"
	ProjectCancelled  ProjectStatus = "cancelado"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectPaused, ProjectDone, ProjectCancelled:
		return true
	}
	return false
}

// Priority is shared by projects and tasks.
type Priority string

const (
	PriorityLow      Priority = "baixa"
	PriorityMedium   Priority = "media"
	PriorityHigh     Priority = "alta"
	PriorityCritical Priority = "critica"
)

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities from low (1) to critical (4). Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

// TaskStatus follows pendente -> em_andamento -> em_revisao -> concluida,
// with cancelada reachable from any non-terminal state. Transitions are not
// enforced; any valid value may be stored at any time.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pendente"
	TaskInProgress TaskStatus = "em_andamento"
	TaskInReview   TaskStatus = "em_revisao"
	TaskDone       TaskStatus = "concluida"
	TaskCancelled  TaskStatus = "cancelada"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskInReview, TaskDone, TaskCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further work is expected on the task.
func (s TaskStatus) Terminal() bool {
	return s == TaskDone || s == TaskCancelled
}

type UserRole string

const (
	UserAdmin        UserRole = "admin"
	UserManager      UserRole = "gerente"
	UserCollaborator UserRole = "colaborador"
	UserViewer       UserRole = "visualizador"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserAdmin, UserManager, UserCollaborator, UserViewer:
		return true
	}
	return false
}
