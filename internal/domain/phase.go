package domain

import "time"

// PhaseDisplay carries presentation tokens for a phase.
type PhaseDisplay struct {
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	BgColor     string `json:"bg_color"`
	BorderColor string `json:"border_color"`
}

type Phase struct {
	ID          PhaseID      `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Display     PhaseDisplay `json:"display"`

	Status   PhaseStatus `json:"status"`
	Progress int         `json:"progress"`

	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
	Delayed    int `json:"delayed"`
	Critical   int `json:"critical"`
	OnTime     int `json:"on_time"`

	Start  *time.Time `json:"start,omitempty"`
	Finish *time.Time `json:"finish,omitempty"`
	// EstimatedDays is the calendar span between Start and Finish, rounded up.
	EstimatedDays int `json:"estimated_days"`
	// DaysRemaining depends on the evaluation time.
	DaysRemaining int `json:"days_remaining"`

	Assets    []Asset  `json:"assets"`
	RecordIDs []string `json:"record_ids,omitempty"`
}

type Asset struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Area     string      `json:"area,omitempty"`
	Code     string      `json:"code,omitempty"`
	Type     AssetType   `json:"type"`
	Category string      `json:"category,omitempty"`
	Progress int         `json:"progress"`
	Status   AssetStatus `json:"status"`

	Start  *time.Time `json:"start,omitempty"`
	Finish *time.Time `json:"finish,omitempty"`

	SubActivities []SubActivity `json:"sub_activities"`
}

type SubActivity struct {
	ID               string         `json:"id"`
	Code             string         `json:"code,omitempty"`
	Name             string         `json:"name"`
	Level            int            `json:"level"`
	Progress         float64        `json:"progress"`
	PhysicalProgress *float64       `json:"physical_progress,omitempty"`
	Duration         string         `json:"duration,omitempty"`
	Start            *time.Time     `json:"start,omitempty"`
	Finish           *time.Time     `json:"finish,omitempty"`
	Responsible      string         `json:"responsible,omitempty"`
	Status           ActivityStatus `json:"status"`
	Milestone        bool           `json:"milestone"`
	Critical         bool           `json:"critical"`
	Predecessors     []string       `json:"predecessors,omitempty"`
	Children         []SubActivity  `json:"children,omitempty"`
}

// PhaseStatusFor derives a phase status from its completion counts.
func PhaseStatusFor(completed, total int) PhaseStatus {
	switch {
	case total > 0 && completed == total:
		return PhaseCompleted
	case completed == 0:
		return PhaseNotStarted
	default:
		return PhaseInProgress
	}
}

type phaseInfo struct {
	name        string
	description string
	display     PhaseDisplay
}

var phaseCatalog = map[PhaseID]phaseInfo{
	PhasePreparation: {
		name:        "Preparação",
		description: "Mobilização e preparação para a parada",
		display:     PhaseDisplay{Icon: "📋", Color: "text-blue-600", BgColor: "bg-blue-50", BorderColor: "border-blue-200"},
	},
	PhaseShutdown: {
		name:        "Parada",
		description: "Procedimentos de parada da usina",
		display:     PhaseDisplay{Icon: "⏹️", Color: "text-red-600", BgColor: "bg-red-50", BorderColor: "border-red-200"},
	},
	PhaseMaintenance: {
		name:        "Manutenção",
		description: "Atividades de manutenção",
		display:     PhaseDisplay{Icon: "🔨", Color: "text-orange-600", BgColor: "bg-orange-50", BorderColor: "border-orange-200"},
	},
	PhaseStartup: {
		name:        "Partida",
		description: "Procedimentos de partida da usina",
		display:     PhaseDisplay{Icon: "▶️", Color: "text-green-600", BgColor: "bg-green-50", BorderColor: "border-green-200"},
	},
}

// NewPhase returns an empty phase carrying the fixed name, description and
// display tokens for id.
func NewPhase(id PhaseID) Phase {
	info := phaseCatalog[id]
	return Phase{
		ID:          id,
		Name:        info.name,
		Description: info.description,
		Display:     info.display,
		Status:      PhaseNotStarted,
		Assets:      []Asset{},
	}
}
