package supervisor

import (
	"fmt"

	"github.com/bryggansbryggeri/bryggio-go/internal/model"
)

// handle is the join-able worker record every registry bucket stores: a
// cancel func to request shutdown and a done channel to join on. Config is
// set at construction and never mutated afterwards.
type handle struct {
	cancel func()
	done   chan struct{}
}

func (h *handle) join() error {
	<-h.done
	return nil
}

type sensorEntry struct {
	handle
	config model.SensorConfig
}

type actuatorEntry struct {
	handle
	config model.ActuatorConfig
}

type controllerEntry struct {
	handle
	config model.ControllerConfig
}

type miscEntry struct {
	handle
	name string
}

// Registry holds the four disjoint client-kind maps. It is owned exclusively
// by the supervisor's command loop; nothing else reads or writes it
// (invariant (c) of the concurrency design).
type Registry struct {
	sensors     map[model.ClientID]*sensorEntry
	actuators   map[model.ClientID]*actuatorEntry
	controllers map[model.ClientID]*controllerEntry
	misc        map[model.ClientID]*miscEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sensors:     make(map[model.ClientID]*sensorEntry),
		actuators:   make(map[model.ClientID]*actuatorEntry),
		controllers: make(map[model.ClientID]*controllerEntry),
		misc:        make(map[model.ClientID]*miscEntry),
	}
}

// occupied reports whether id already appears in any bucket, enforcing
// invariant (I1): a ClientId is never present in more than one map.
func (r *Registry) occupied(id model.ClientID) bool {
	if _, ok := r.sensors[id]; ok {
		return true
	}
	if _, ok := r.actuators[id]; ok {
		return true
	}
	if _, ok := r.controllers[id]; ok {
		return true
	}
	if _, ok := r.misc[id]; ok {
		return true
	}
	return false
}

var errDuplicateID = fmt.Errorf("registry: id already active")

func (r *Registry) addSensor(cfg model.SensorConfig, cancel func(), done chan struct{}) error {
	if r.occupied(cfg.ID) {
		return errDuplicateID
	}
	r.sensors[cfg.ID] = &sensorEntry{handle: handle{cancel: cancel, done: done}, config: cfg}
	return nil
}

func (r *Registry) addActuator(cfg model.ActuatorConfig, cancel func(), done chan struct{}) error {
	if r.occupied(cfg.ID) {
		return errDuplicateID
	}
	r.actuators[cfg.ID] = &actuatorEntry{handle: handle{cancel: cancel, done: done}, config: cfg}
	return nil
}

func (r *Registry) addController(cfg model.ControllerConfig, cancel func(), done chan struct{}) error {
	if r.occupied(cfg.ID) {
		return errDuplicateID
	}
	r.controllers[cfg.ID] = &controllerEntry{handle: handle{cancel: cancel, done: done}, config: cfg}
	return nil
}

func (r *Registry) addMisc(id model.ClientID, name string, cancel func(), done chan struct{}) error {
	if r.occupied(id) {
		return errDuplicateID
	}
	r.misc[id] = &miscEntry{handle: handle{cancel: cancel, done: done}, name: name}
	return nil
}

func (r *Registry) controller(id model.ClientID) (*controllerEntry, bool) {
	e, ok := r.controllers[id]
	return e, ok
}

// removeController deletes id from the controller bucket. Callers must
// already have paired this with a shutdown request and a completed join,
// per invariant (I4).
func (r *Registry) removeController(id model.ClientID) {
	delete(r.controllers, id)
}

// Snapshot is the reply payload for list_active_clients: ids and configs,
// excluding the unexported worker handles.
type Snapshot struct {
	Sensors     []model.SensorConfig     `json:"sensors"`
	Actuators   []model.ActuatorConfig   `json:"actuators"`
	Controllers []model.ControllerConfig `json:"controllers"`
	Misc        []string                 `json:"misc"`
}

func (r *Registry) snapshot() Snapshot {
	s := Snapshot{}
	for _, e := range r.sensors {
		s.Sensors = append(s.Sensors, e.config)
	}
	for _, e := range r.actuators {
		s.Actuators = append(s.Actuators, e.config)
	}
	for _, e := range r.controllers {
		s.Controllers = append(s.Controllers, e.config)
	}
	for _, e := range r.misc {
		s.Misc = append(s.Misc, e.name)
	}
	return s
}
