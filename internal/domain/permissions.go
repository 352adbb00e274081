package domain

// PermissionSet es el bundle de capacidades que aplicamos a un (user, chat).
type PermissionSet struct {
	CanSendMessages    bool
	CanSendMedia       bool
	CanSendOther       bool
	CanAddLinkPreviews bool
}

// Restricted: el set que aplicamos al entrar (no puede mandar nada).
var Restricted = PermissionSet{}

// Unrestricted: el set normal de un miembro que ya aceptó.
var Unrestricted = PermissionSet{
	CanSendMessages:    true,
	CanSendMedia:       true,
	CanSendOther:       true,
	CanAddLinkPreviews: true,
}

// Control es el único elemento interactivo del prompt; Payload identifica al
// usuario destino (nunca va el texto de los términos acá, hay límite de tamaño).
type Control struct {
	Label   string
	Payload string
}
