package domain

// Eventos entrantes ya traducidos por el adapter (la fuente real es el gateway
// de Discord, pero los services solo ven estas formas).

type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
)

type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentVoice ContentKind = "voice"
	ContentMedia ContentKind = "media"
	ContentOther ContentKind = "other"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

func (r Role) IsAdmin() bool { return r == RoleAdmin || r == RoleOwner }

type Member struct {
	ID          string
	DisplayName string
	IsBot       bool
}

type MembersJoined struct {
	ChatID  string
	Members []Member
}

// ActionTriggered: click en un botón. ActionID es el token opaco que el
// adapter necesita para responderle al actor (ephemeral).
type ActionTriggered struct {
	ChatID     string
	ActorID    string
	ActorName  string
	MessageRef string
	Payload    string
	ActionID   string
}

type ContentPosted struct {
	ChatID     string
	ChatType   ChatType
	AuthorID   string
	MessageRef string
	Kind       ContentKind
}

// CommandInvoked se emite para CUALQUIER texto "/algo"; los comandos no
// registrados caen al filtro de contenido como texto normal.
type CommandInvoked struct {
	ChatID     string
	ChatTitle  string
	ChatType   ChatType
	InvokerID  string
	MessageRef string
	Name       string
}

// Event es el union de los tipos de arriba (type switch en el dispatcher).
type Event any
