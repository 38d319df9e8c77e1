package a2a

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sync"
)

// NewTaskID generates a UUID v4 string using crypto/rand.
func NewTaskID() string {
	var uuid [16]byte
	_, _ = rand.Read(uuid[:])
	// Set version 4 (bits 12-15 of time_hi_and_version).
	uuid[6] = (uuid[6] & 0x0f) | 0x40
	// Set variant bits (bits 6-7 of clock_seq_hi_and_reserved).
	uuid[8] = (uuid[8] & 0x3f) | 0x80
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16])
}

// TaskStore is a concurrency-safe in-memory store for agent-side task
// tracking. Tasks live only for the duration of the serving process; no
// comparison history is persisted across runs.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTaskStore returns an initialized TaskStore ready for use.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*Task),
	}
}

// Create stores a new task. It returns an error if a task with the same ID
// already exists.
func (s *TaskStore) Create(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task %q already exists", task.ID)
	}
	s.tasks[task.ID] = &task
	return nil
}

// Get returns a deep copy of the task with the given ID. It returns an error
// if no task with that ID is found. The returned copy is safe to mutate
// without affecting the store.
func (s *TaskStore) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %q not found", id)
	}
	return deepCopyTask(t), nil
}

// Update applies the mutation function fn to the task identified by id under
// a write lock. The function receives the actual stored task pointer, so all
// mutations are applied in-place. It returns an error if the task is not found.
func (s *TaskStore) Update(id string, fn func(*Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %q not found", id)
	}
	fn(t)
	return nil
}

// deepCopyTask returns a new Task that is a deep copy of src. Slice fields
// (Artifacts, History) and the Metadata byte slice are independently copied.
func deepCopyTask(src *Task) *Task {
	dst := *src

	if src.Artifacts != nil {
		dst.Artifacts = make([]Artifact, len(src.Artifacts))
		for i, a := range src.Artifacts {
			dst.Artifacts[i] = deepCopyArtifact(a)
		}
	}

	if src.History != nil {
		dst.History = make([]Message, len(src.History))
		for i, m := range src.History {
			dst.History[i] = deepCopyMessage(m)
		}
	}

	if src.Metadata != nil {
		dst.Metadata = make(json.RawMessage, len(src.Metadata))
		copy(dst.Metadata, src.Metadata)
	}

	if src.Status.Message != nil {
		msgCopy := deepCopyMessage(*src.Status.Message)
		dst.Status.Message = &msgCopy
	}

	return &dst
}

// deepCopyMessage returns a deep copy of a Message.
func deepCopyMessage(src Message) Message {
	dst := src

	if src.Parts != nil {
		dst.Parts = make([]Part, len(src.Parts))
		for i, p := range src.Parts {
			dst.Parts[i] = deepCopyPart(p)
		}
	}

	if src.Metadata != nil {
		dst.Metadata = make(json.RawMessage, len(src.Metadata))
		copy(dst.Metadata, src.Metadata)
	}

	return dst
}

// deepCopyPart returns a deep copy of a Part.
func deepCopyPart(src Part) Part {
	dst := src

	if src.Data != nil {
		dst.Data = make(json.RawMessage, len(src.Data))
		copy(dst.Data, src.Data)
	}

	return dst
}

// deepCopyArtifact returns a deep copy of an Artifact.
func deepCopyArtifact(src Artifact) Artifact {
	dst := src

	if src.Parts != nil {
		dst.Parts = make([]Part, len(src.Parts))
		for i, p := range src.Parts {
			dst.Parts[i] = deepCopyPart(p)
		}
	}

	if src.Metadata != nil {
		dst.Metadata = make(json.RawMessage, len(src.Metadata))
		copy(dst.Metadata, src.Metadata)
	}

	return dst
}
