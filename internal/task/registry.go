package task

import (
	"fmt"
	"sync"

	"github.com/haierkeys/site-text-service/internal/app"
)

// TaskFactory builds a task from the app container.
// (nil, nil) means the task is disabled by the current configuration.
// TaskFactory 由应用容器构建任务，返回 (nil, nil) 表示当前配置下不启用
type TaskFactory func(appContainer *app.App) (Task, error)

type registration struct {
	name    string
	factory TaskFactory
}

var registry struct {
	sync.Mutex
	entries []registration
}

// Register adds a factory under name, usually from an init func.
// Registering the same name twice panics.
// Register 以 name 登记任务工厂，同名重复登记会 panic
func Register(name string, factory TaskFactory) {
	registry.Lock()
	defer registry.Unlock()
	if factory == nil {
		panic("task: Register factory is nil for " + name)
	}
	for _, e := range registry.entries {
		if e.name == name {
			panic(fmt.Sprintf("task: Register called twice for %q", name))
		}
	}
	registry.entries = append(registry.entries, registration{name: name, factory: factory})
}

// registered returns a snapshot in registration order
func registered() []registration {
	registry.Lock()
	defer registry.Unlock()
	return append([]registration(nil), registry.entries...)
}
