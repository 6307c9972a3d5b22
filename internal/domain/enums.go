package domain

// PhaseID identifies one of the four fixed phases of a plant shutdown.
type PhaseID string

const (
	PhasePreparation PhaseID = "preparation"
	PhaseShutdown    PhaseID = "shutdown"
	PhaseMaintenance PhaseID = "maintenance"
	PhaseStartup     PhaseID = "startup"
)

// PhaseOrder is the canonical display and execution order of the phases.
var PhaseOrder = []PhaseID{PhasePreparation, PhaseShutdown, PhaseMaintenance, PhaseStartup}

// ValidPhaseIDs is the canonical set of accepted phase identifiers.
var ValidPhaseIDs = map[string]bool{
	"preparation": true, "shutdown": true, "maintenance": true, "startup": true,
}

type PhaseStatus string

const (
	PhaseNotStarted PhaseStatus = "not-started"
	PhaseInProgress PhaseStatus = "in-progress"
	PhaseCompleted  PhaseStatus = "completed"
)

type AssetStatus string

const (
	AssetCompleted  AssetStatus = "completed"
	AssetDelayed    AssetStatus = "delayed"
	AssetInProgress AssetStatus = "in-progress"
)

type ActivityStatus string

const (
	ActivityCompleted  ActivityStatus = "completed"
	ActivityInProgress ActivityStatus = "in-progress"
	ActivityDelayed    ActivityStatus = "delayed"
	ActivityPending    ActivityStatus = "pending"
)

// AssetType is the kind of equipment a work front is organised around.
type AssetType string

const (
	AssetBoiler       AssetType = "boiler"
	AssetTurbine      AssetType = "turbine"
	AssetGenerator    AssetType = "generator"
	AssetPump         AssetType = "pump"
	AssetFan          AssetType = "fan"
	AssetChimney      AssetType = "chimney"
	AssetTransformer  AssetType = "transformer"
	AssetKiln         AssetType = "kiln"
	AssetMill         AssetType = "mill"
	AssetConveyor     AssetType = "conveyor"
	AssetPrecipitator AssetType = "precipitator"
	AssetDryer        AssetType = "dryer"
	AssetScreen       AssetType = "screen"
	AssetSilo         AssetType = "silo"
	AssetCoolingTower AssetType = "cooling-tower"
	AssetThickener    AssetType = "thickener"
	AssetCompressor   AssetType = "compressor"
	AssetValve        AssetType = "valve"
	AssetOther        AssetType = "other"
)

// SourceFormat names the schedule export a record set was read from.
type SourceFormat string

const (
	FormatPreparation SourceFormat = "preparation"
	FormatPFUS3       SourceFormat = "pfus3"
)

// ValidSourceFormats is the canonical set of accepted source format strings.
var ValidSourceFormats = map[string]bool{
	"preparation": true, "pfus3": true,
}
