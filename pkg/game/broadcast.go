package game

// Broadcaster publishes an event to every client subscribed to a game room.
// Implementations must be safe for concurrent use and must not call back
// into the game layer.
type Broadcaster interface {
	Emit(gameID, event string, payload interface{})
}

// Client-facing event names
const (
	EventSpawnHelicopter     = "spawnHelicopter"
	EventRemoveHelicopter    = "removeHelicopter"
	EventHelicopterDamaged   = "helicopterDamaged"
	EventExistingHelicopters = "existingHelicopters"
	EventManagerDisposed     = "helicopterManagerDisposed"
	EventProjectileFired     = "projectileFired"
)

// SpawnHelicopterPayload announces a new helicopter with its down-sampled path
type SpawnHelicopterPayload struct {
	ID         int         `json:"id"`
	SpawnTime  int64       `json:"spawnTime"`
	SpawnPoint SpawnPoint  `json:"spawnPoint"`
	FlightPath []PathPoint `json:"flightPath"`
}

// RemoveHelicopterPayload tells clients to drop a helicopter
type RemoveHelicopterPayload struct {
	ID int `json:"id"`
}

// HelicopterDamagedPayload carries a helicopter's remaining health
type HelicopterDamagedPayload struct {
	ID     int `json:"id"`
	Health int `json:"health"`
}

// ExistingHelicoptersPayload is the late-joiner snapshot
type ExistingHelicoptersPayload struct {
	ServerTime  int64         `json:"serverTime"`
	Helicopters []*Helicopter `json:"helicopters"`
}

// ManagerDisposedPayload announces that a game's helicopter population is gone
type ManagerDisposedPayload struct {
	GameID string `json:"gameId"`
}

// ProjectileFiredPayload carries a projectile's full client timeline
type ProjectileFiredPayload struct {
	ProjectileID int             `json:"projectileId"`
	FiredAt      int64           `json:"firedAt"`
	Timeline     []TimelineEvent `json:"timeline"`
}

// NopBroadcaster discards every event. Used when a session runs headless.
type NopBroadcaster struct{}

// Emit discards the event
func (NopBroadcaster) Emit(gameID, event string, payload interface{}) {}

// FilterFlightPath down-samples a path for clients: the first and last
// points always survive, interior points survive at a 1/factor stride, and
// any point flagged IsExitPoint survives regardless of stride so clients
// always see exit boundaries exactly.
func FilterFlightPath(path []PathPoint, factor int) []PathPoint {
	if len(path) <= 2 || factor <= 1 {
		return append([]PathPoint(nil), path...)
	}

	filtered := make([]PathPoint, 0, len(path)/factor+2)
	for i, point := range path {
		if i == 0 || i == len(path)-1 || point.IsExitPoint || i%factor == 0 {
			filtered = append(filtered, point)
		}
	}
	return filtered
}

// FilterTimeline down-samples a projectile timeline with the same rules:
// first, last, every Nth move, and every non-move event survive.
func FilterTimeline(timeline []TimelineEvent, factor int) []TimelineEvent {
	if len(timeline) <= 2 || factor <= 1 {
		return append([]TimelineEvent(nil), timeline...)
	}

	filtered := make([]TimelineEvent, 0, len(timeline)/factor+2)
	for i, event := range timeline {
		if i == 0 || i == len(timeline)-1 || event.Type != TimelineMove || i%factor == 0 {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
