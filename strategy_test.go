package container_test

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/highperapp/container"
)

func TestCompile_SecondCallIsNoOp(t *testing.T) {
	c := container.New()
	c.Singleton("logger", func(c *container.Container) (any, error) {
		return &Logger{}, nil
	})
	c.Bind("service", (*Service)(nil))

	c.Compile()
	before := c.Stats()
	resolved := container.Resolve[*Logger](c, "logger")

	c.Compile() // no intervening mutation: observably a no-op

	after := c.Stats()
	before.Singletons = after.Singletons // materialization is the only delta
	if before != after {
		t.Errorf("stats changed across idempotent compile: %+v vs %+v", before, after)
	}
	if container.Resolve[*Logger](c, "logger") != resolved {
		t.Error("idempotent compile must not discard materialized singletons")
	}
}

func TestCompile_MutationTriggersRecompileOnNextGet(t *testing.T) {
	c := container.New()
	c.Singleton("logger", func(c *container.Container) (any, error) {
		return &Logger{}, nil
	})
	container.Resolve[*Logger](c, "logger")
	if !c.Stats().Compiled {
		t.Fatal("registry should be compiled after Get")
	}

	c.Bind("service", (*Service)(nil))
	if c.Stats().Compiled {
		t.Fatal("binding mutation should reset the compiled flag")
	}

	container.Resolve[*Service](c, "service")
	stats := c.Stats()
	if !stats.Compiled || stats.Strategies != 2 {
		t.Errorf("expected whole-registry recompile, got %+v", stats)
	}
}

func TestSnapshot_ExportsTargetsAndDependencies(t *testing.T) {
	c := container.New()
	c.Singleton("logger", (*Logger)(nil))
	c.Bind("service", (*Service)(nil))
	c.Factory("ids", func(c *container.Container) (any, error) { return 1, nil })
	c.Bind("answer", 42)

	snap := c.Snapshot()
	byID := make(map[string]container.BindingSnapshot, len(snap))
	for _, b := range snap {
		byID[b.ID] = b
	}

	logger, ok := byID["logger"]
	if !ok || !logger.Singleton {
		t.Fatalf("logger snapshot missing or not singleton: %+v", snap)
	}
	service := byID["service"]
	if len(service.Dependencies) != 1 || service.Dependencies[0] != "logger" {
		t.Errorf("service dependencies = %v, want [logger]", service.Dependencies)
	}
	if byID["answer"].Target != "literal" {
		t.Errorf("answer target = %q, want literal", byID["answer"].Target)
	}
	// Factory registrations are not definitions; they are not exported.
	if _, ok := byID["ids"]; ok {
		t.Error("factory registrations should not appear in the snapshot")
	}

	// Sorted by identifier.
	for i := 1; i < len(snap); i++ {
		if snap[i-1].ID > snap[i].ID {
			t.Errorf("snapshot not sorted: %v before %v", snap[i-1].ID, snap[i].ID)
		}
	}
}

func TestGraph_OrderedClassTypedDependencies(t *testing.T) {
	c := container.New()
	c.Instance("port", 8080)
	c.Instance("logger", &Logger{})
	c.Bind("server", (*configuredServer)(nil))

	graph := c.Graph()
	want := []string{"port", "logger"}
	if !reflect.DeepEqual(graph["server"], want) {
		t.Errorf("graph[server] = %v, want %v (constructor field order)", graph["server"], want)
	}
}

func TestGet_InvalidTypeTargetReportsRecordedError(t *testing.T) {
	c := container.New()
	c.Bind("bad", reflect.TypeOf(42)) // not a pointer to struct

	_, err := c.Get("bad")
	var ue *container.UnresolvableError
	if !asError(err, &ue) {
		t.Fatalf("got %v, want UnresolvableError", err)
	}
	if !strings.Contains(err.Error(), "pointer to struct") {
		t.Errorf("error %q should carry the recorded target diagnosis", err)
	}
}

func TestGet_SelfBindingWithoutTypeReportsError(t *testing.T) {
	c := container.New()
	c.Bind("phantom", nil) // self-binding, but no type was registered

	_, err := c.Get("phantom")
	var ue *container.UnresolvableError
	if !asError(err, &ue) {
		t.Fatalf("got %v, want UnresolvableError", err)
	}
	if !strings.Contains(err.Error(), "phantom") {
		t.Errorf("error %q should name the identifier", err)
	}
}

func TestCompile_DebugLogsUnloadableDefinition(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := container.New(container.WithDebug(), container.WithLogger(logger))
	c.Bind("phantom", nil)

	c.Compile()

	out := buf.String()
	if !strings.Contains(out, "phantom") || !strings.Contains(out, "kind=type") {
		t.Errorf("debug output should name the definition and its kind, got %q", out)
	}
}

func TestSelfBinding_UsesTypeTable(t *testing.T) {
	c := container.New()
	c.Instance("logger", &Logger{Prefix: "self"})
	c.RegisterType((*Service)(nil))

	key := container.TypeKey((*Service)(nil))
	c.Bind(key, nil) // self-binding: target defaults to the identifier's type

	svc := container.Resolve[*Service](c, key)
	if svc.Logger == nil || svc.Logger.Prefix != "self" {
		t.Error("self-binding should construct from the registered type")
	}
}
