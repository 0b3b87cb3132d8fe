package merge

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"

	"github.com/pkg/errors"
)

// Merge applies a sparse patch onto an existing employee: fields named in the
// patch are overwritten (null resets a field to its zero value), every other
// field is left untouched.
type Merge interface {
	EmployeeMerge(existing data.Employee, patch data.EmployeePatch) (*data.Employee, error)
}

type jsonMerge struct {
	sync.RWMutex
	config struct {
		strict bool
	}
}

// NewMerge returns a Merge that works on the json representation of an
// employee; unknown keys are ignored unless MERGE_STRICT is set.
func NewMerge() interface {
	internal.Configurer
	Merge
} {
	return &jsonMerge{}
}

func (m *jsonMerge) Configure(envs map[string]string) error {
	m.Lock()
	defer m.Unlock()

	if strict, ok := envs["MERGE_STRICT"]; ok {
		m.config.strict, _ = strconv.ParseBool(strict)
	}
	return nil
}

func (m *jsonMerge) EmployeeMerge(existing data.Employee, patch data.EmployeePatch) (*data.Employee, error) {
	m.RLock()
	strict := m.config.strict
	m.RUnlock()

	bytes, err := json.Marshal(&existing)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(bytes, &fields); err != nil {
		return nil, err
	}
	var unknown []string
	for key, value := range patch {
		if _, ok := fields[key]; !ok {
			unknown = append(unknown, key)
			continue
		}
		fields[key] = value
	}
	if strict && len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.Wrapf(data.ErrInvalidRequest, "unknown fields: %s",
			strings.Join(unknown, ", "))
	}
	if bytes, err = json.Marshal(fields); err != nil {
		return nil, errors.Wrap(data.ErrInvalidRequest, err.Error())
	}
	employee := &data.Employee{}
	if err := json.Unmarshal(bytes, employee); err != nil {
		return nil, errors.Wrap(data.ErrInvalidRequest, err.Error())
	}
	return employee, nil
}
