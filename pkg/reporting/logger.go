package reporting

import (
	"fmt"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/shellstorm/server/pkg/logger"
)

// ScenarioLogger collects and prints the events of one scenario run
type ScenarioLogger struct {
	runID     string
	startTime time.Time
	events    []ScenarioEvent
	metrics   map[string]Metric
	mu        sync.RWMutex
}

// ScenarioEvent is one logged scenario event
type ScenarioEvent struct {
	Timestamp time.Time
	Type      string
	Severity  string
	EntityID  int
	Message   string
	Details   map[string]interface{}
}

// Metric is a tracked scalar with history
type Metric struct {
	Name        string
	Value       float64
	Unit        string
	LastUpdated time.Time
	History     []MetricPoint
}

// MetricPoint is a metric value at a point in time
type MetricPoint struct {
	Timestamp time.Time
	Value     float64
}

// Event type constants
const (
	EventTypeSpawn       = "spawn"
	EventTypeRemoval     = "removal"
	EventTypeDamage      = "damage"
	EventTypeDestruction = "destruction"
	EventTypeShot        = "shot"
	EventTypeImpact      = "impact"
	EventTypeSystem      = "system"
)

// Severity constants
const (
	SeverityDebug   = "debug"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Color definitions
var (
	colorDebug   = color.New(color.FgHiBlack)
	colorInfo    = color.New(color.FgCyan)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
	colorSuccess = color.New(color.FgGreen)
)

// NewScenarioLogger creates a logger for one scenario run
func NewScenarioLogger(runID string) *ScenarioLogger {
	sl := &ScenarioLogger{
		runID:     runID,
		startTime: time.Now(),
		events:    make([]ScenarioEvent, 0),
		metrics:   make(map[string]Metric),
	}

	sl.logColoredMessage(SeverityInfo, "Scenario Started",
		fmt.Sprintf("ID: %s | Time: %s", runID, sl.startTime.Format("15:04:05")))

	return sl
}

// LogSpawn logs a helicopter spawn
func (sl *ScenarioLogger) LogSpawn(entityID, pathPoints int) {
	sl.logEvent(ScenarioEvent{
		Timestamp: time.Now(),
		Type:      EventTypeSpawn,
		Severity:  SeverityInfo,
		EntityID:  entityID,
		Message:   fmt.Sprintf("Helicopter spawned: %d (%d path points)", entityID, pathPoints),
		Details: map[string]interface{}{
			"path_points": pathPoints,
		},
	})
}

// LogRemoval logs a helicopter removal
func (sl *ScenarioLogger) LogRemoval(entityID int, cause string) {
	sl.logEvent(ScenarioEvent{
		Timestamp: time.Now(),
		Type:      EventTypeRemoval,
		Severity:  SeverityInfo,
		EntityID:  entityID,
		Message:   fmt.Sprintf("Helicopter removed: %d (cause: %s)", entityID, cause),
		Details: map[string]interface{}{
			"cause": cause,
		},
	})
}

// LogDamage logs a damage application
func (sl *ScenarioLogger) LogDamage(entityID, damage, remaining int) {
	sl.logEvent(ScenarioEvent{
		Timestamp: time.Now(),
		Type:      EventTypeDamage,
		Severity:  SeverityInfo,
		EntityID:  entityID,
		Message:   fmt.Sprintf("Helicopter %d took %d damage, %d remaining", entityID, damage, remaining),
		Details: map[string]interface{}{
			"damage":    damage,
			"remaining": remaining,
		},
	})
}

// LogDestruction logs a helicopter destruction
func (sl *ScenarioLogger) LogDestruction(entityID int) {
	sl.logEvent(ScenarioEvent{
		Timestamp: time.Now(),
		Type:      EventTypeDestruction,
		Severity:  SeverityWarning,
		EntityID:  entityID,
		Message:   fmt.Sprintf("Helicopter destroyed: %d", entityID),
	})

	sl.logColoredMessage(SeverityWarning, "Destruction",
		fmt.Sprintf("Helicopter %d destroyed", entityID))
}

// LogShot logs a projectile shot and its outcome
func (sl *ScenarioLogger) LogShot(projectileID, hits int) {
	sl.logEvent(ScenarioEvent{
		Timestamp: time.Now(),
		Type:      EventTypeShot,
		Severity:  SeverityInfo,
		EntityID:  projectileID,
		Message:   fmt.Sprintf("Projectile %d fired, %d hits", projectileID, hits),
		Details: map[string]interface{}{
			"hits": hits,
		},
	})
}

// LogError logs a scenario error
func (sl *ScenarioLogger) LogError(message string, err error) {
	sl.logEvent(ScenarioEvent{
		Timestamp: time.Now(),
		Type:      EventTypeSystem,
		Severity:  SeverityError,
		Message:   message,
		Details: map[string]interface{}{
			"error": err.Error(),
		},
	})

	logger.Errorf("%s: %v", message, err)
}

// UpdateMetric updates a metric value
func (sl *ScenarioLogger) UpdateMetric(name string, value float64, unit string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	metric, exists := sl.metrics[name]
	if !exists {
		metric = Metric{
			Name:    name,
			Unit:    unit,
			History: make([]MetricPoint, 0),
		}
	}

	metric.Value = value
	metric.LastUpdated = time.Now()
	metric.History = append(metric.History, MetricPoint{
		Timestamp: time.Now(),
		Value:     value,
	})

	// Keep only last 1000 points
	if len(metric.History) > 1000 {
		metric.History = metric.History[len(metric.History)-1000:]
	}

	sl.metrics[name] = metric
}

// GetEvents returns all logged events
func (sl *ScenarioLogger) GetEvents() []ScenarioEvent {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	events := make([]ScenarioEvent, len(sl.events))
	copy(events, sl.events)
	return events
}

// GetSummary builds a run summary
func (sl *ScenarioLogger) GetSummary() ScenarioSummary {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	eventCounts := make(map[string]int)
	for _, event := range sl.events {
		eventCounts[event.Type]++
	}

	return ScenarioSummary{
		RunID:       sl.runID,
		StartTime:   sl.startTime,
		Duration:    time.Since(sl.startTime),
		TotalEvents: len(sl.events),
		EventCounts: eventCounts,
		Metrics:     sl.metrics,
	}
}

// ScenarioSummary summarizes one scenario run
type ScenarioSummary struct {
	RunID       string
	StartTime   time.Time
	Duration    time.Duration
	TotalEvents int
	EventCounts map[string]int
	Metrics     map[string]Metric
}

// logEvent appends an event to the buffer
func (sl *ScenarioLogger) logEvent(event ScenarioEvent) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.events = append(sl.events, event)

	// Keep only last 10000 events to prevent memory issues
	if len(sl.events) > 10000 {
		sl.events = sl.events[len(sl.events)-10000:]
	}
}

// logColoredMessage prints a message colored by severity
func (sl *ScenarioLogger) logColoredMessage(severity, eventType, message string) {
	timestamp := time.Now().Format("15:04:05.000")

	var severityColor *color.Color
	switch severity {
	case SeverityDebug:
		severityColor = colorDebug
	case SeverityInfo:
		severityColor = colorInfo
	case SeverityWarning:
		severityColor = colorWarning
	case SeverityError:
		severityColor = colorError
	default:
		severityColor = colorInfo
	}

	fmt.Printf("[%s] %s %s | %s\n",
		timestamp,
		severityColor.Sprint(fmt.Sprintf("%-8s", severity)),
		eventType,
		message)
}

// PrintSummary prints a formatted run summary
func (sl *ScenarioLogger) PrintSummary() {
	summary := sl.GetSummary()

	colorSuccess.Printf("\n=== Scenario Summary - %s ===\n", summary.RunID)

	fmt.Printf("\nDuration: %v | Total Events: %d\n", summary.Duration, summary.TotalEvents)

	fmt.Println("\nEvent Distribution:")
	for eventType, count := range summary.EventCounts {
		fmt.Printf("   %-20s: %d\n", eventType, count)
	}

	if len(summary.Metrics) > 0 {
		fmt.Println("\nMetrics:")
		for name, metric := range summary.Metrics {
			fmt.Printf("   %-20s: %.2f %s\n", name, metric.Value, metric.Unit)
		}
	}

	colorSuccess.Println("\n=============================")
}
