package container_test

import (
	"sync/atomic"
	"testing"

	"github.com/highperapp/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type Logger struct {
	Prefix string
}

type Service struct {
	Logger *Logger `inject:"logger"`
}

func newCounting(counter *atomic.Int64) container.Factory {
	return func(c *container.Container) (any, error) {
		counter.Add(1)
		return &Logger{Prefix: "counted"}, nil
	}
}

// ── Singleton identity ────────────────────────────────────────────────────────

func TestSingleton_SameInstanceEveryGet(t *testing.T) {
	c := container.New()
	var calls atomic.Int64
	c.Singleton("logger", newCounting(&calls))

	first := container.Resolve[*Logger](c, "logger")
	second := container.Resolve[*Logger](c, "logger")
	third := container.Resolve[*Logger](c, "logger")

	if first != second || second != third {
		t.Error("singleton Get should return the identical instance")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("factory invoked %d times, want exactly 1", got)
	}
}

func TestSingleton_InstanceRegistration(t *testing.T) {
	c := container.New()
	logger := &Logger{Prefix: "prebuilt"}
	c.Instance("logger", logger)

	if got := container.Resolve[*Logger](c, "logger"); got != logger {
		t.Error("Instance() registration should be returned as-is")
	}
}

// ── Transient distinctness ────────────────────────────────────────────────────

func TestBind_TransientReturnsDistinctInstances(t *testing.T) {
	c := container.New()
	var calls atomic.Int64
	c.Factory("logger", newCounting(&calls))

	const n = 5
	seen := make(map[*Logger]bool)
	for i := 0; i < n; i++ {
		seen[container.Resolve[*Logger](c, "logger")] = true
	}

	if len(seen) != n {
		t.Errorf("got %d distinct instances, want %d", len(seen), n)
	}
	if got := calls.Load(); got != n {
		t.Errorf("factory invoked %d times, want %d", got, n)
	}
}

func TestBind_TransientTypeTarget(t *testing.T) {
	c := container.New()
	c.Singleton("logger", func(c *container.Container) (any, error) {
		return &Logger{Prefix: "shared"}, nil
	})
	c.Bind("service", (*Service)(nil))

	a := container.Resolve[*Service](c, "service")
	b := container.Resolve[*Service](c, "service")

	if a == b {
		t.Error("transient Get should return distinct Service instances")
	}
	if a.Logger == nil || a.Logger != b.Logger {
		t.Error("both services should share the identical singleton Logger")
	}
}

// ── Alias transparency ────────────────────────────────────────────────────────

func TestAlias_ResolvesThroughSingleHop(t *testing.T) {
	c := container.New()
	c.Alias("logger", "log")
	c.Singleton("logger", func(c *container.Container) (any, error) {
		return &Logger{Prefix: "aliased"}, nil
	})

	direct := container.Resolve[*Logger](c, "logger")
	viaAlias := container.Resolve[*Logger](c, "log")

	if direct != viaAlias {
		t.Error("alias and canonical identifier should share lifetime and instance")
	}
	if !c.Has("log") {
		t.Error("Has should see through the alias")
	}
}

func TestAlias_SelfAliasIgnored(t *testing.T) {
	c := container.New()
	c.Alias("logger", "logger")
	c.Instance("logger", &Logger{})
	if _, err := c.Get("logger"); err != nil {
		t.Fatalf("self-alias must not break resolution: %v", err)
	}
}

// ── Invalidation on rebind ────────────────────────────────────────────────────

func TestRebind_DiscardsCachedSingleton(t *testing.T) {
	c := container.New()
	c.Singleton("logger", func(c *container.Container) (any, error) {
		return &Logger{Prefix: "old"}, nil
	})
	old := container.Resolve[*Logger](c, "logger")

	c.Singleton("logger", func(c *container.Container) (any, error) {
		return &Logger{Prefix: "new"}, nil
	})
	fresh := container.Resolve[*Logger](c, "logger")

	if fresh == old {
		t.Error("rebinding should discard the previously cached instance")
	}
	if fresh.Prefix != "new" {
		t.Errorf("got prefix %q, want %q", fresh.Prefix, "new")
	}
}

func TestRebind_InstanceOverridesDefinition(t *testing.T) {
	c := container.New()
	c.Singleton("logger", func(c *container.Container) (any, error) {
		return &Logger{Prefix: "built"}, nil
	})
	replacement := &Logger{Prefix: "pinned"}
	c.Instance("logger", replacement)

	if got := container.Resolve[*Logger](c, "logger"); got != replacement {
		t.Error("Instance() should shadow the previous definition")
	}
}

// ── Extend ────────────────────────────────────────────────────────────────────

func TestExtend_DecoratesFutureResolutions(t *testing.T) {
	c := container.New()
	c.Factory("logger", func(c *container.Container) (any, error) {
		return &Logger{Prefix: "plain"}, nil
	})
	if err := c.Extend("logger", func(v any, c *container.Container) any {
		v.(*Logger).Prefix = "decorated"
		return v
	}); err != nil {
		t.Fatalf("Extend: %v", err)
	}

	if got := container.Resolve[*Logger](c, "logger"); got.Prefix != "decorated" {
		t.Errorf("got prefix %q, want %q", got.Prefix, "decorated")
	}
}

func TestExtend_AppliesToMaterializedSingleton(t *testing.T) {
	c := container.New()
	c.Singleton("logger", func(c *container.Container) (any, error) {
		return &Logger{Prefix: "plain"}, nil
	})
	resolved := container.Resolve[*Logger](c, "logger")

	if err := c.Extend("logger", func(v any, c *container.Container) any {
		v.(*Logger).Prefix = "decorated"
		return v
	}); err != nil {
		t.Fatalf("Extend: %v", err)
	}

	if resolved.Prefix != "decorated" {
		t.Error("extender should be applied to the already-shared singleton")
	}
}

func TestExtend_UnboundIdentifierFails(t *testing.T) {
	c := container.New()
	err := c.Extend("ghost", func(v any, c *container.Container) any { return v })

	var nf *container.NotFoundError
	if !asError(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

// ── Literals ──────────────────────────────────────────────────────────────────

func TestBind_LiteralTarget(t *testing.T) {
	c := container.New()
	c.Bind("answer", 42)

	v, err := c.Get("answer")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 42 {
		t.Errorf("got %v, want 42", v)
	}
}

// ── Flush ─────────────────────────────────────────────────────────────────────

func TestFlush_KeepsSelfRegistration(t *testing.T) {
	c := container.New()
	c.Instance("logger", &Logger{})
	c.Alias("logger", "log")
	c.Flush()

	if c.Has("logger") || c.Has("log") {
		t.Error("Flush should clear bindings and aliases")
	}
	self, err := c.Get(container.SelfID)
	if err != nil {
		t.Fatalf("Get(container): %v", err)
	}
	if self != c {
		t.Error("Flush must preserve the container's self-registration")
	}
}

// ── Has / Bindings / Stats ────────────────────────────────────────────────────

func TestHas_CoversAllRegistrationForms(t *testing.T) {
	c := container.New()
	c.Bind("bound", (*Logger)(nil))
	c.Instance("value", 7)
	c.Factory("made", func(c *container.Container) (any, error) { return 1, nil })
	c.RegisterType((*Service)(nil))

	for _, id := range []string{"bound", "value", "made", container.TypeKey((*Service)(nil))} {
		if !c.Has(id) {
			t.Errorf("Has(%q) = false, want true", id)
		}
	}
	if c.Has("ghost") {
		t.Error("Has(ghost) = true, want false")
	}
}

func TestBindings_SortedAndDeduplicated(t *testing.T) {
	c := container.New()
	c.Bind("b", 2)
	c.Bind("a", 1)
	c.Factory("c", func(c *container.Container) (any, error) { return 3, nil })

	got := c.Bindings()
	want := []string{"a", "b", "c", container.SelfID}
	if len(got) != len(want) {
		t.Fatalf("Bindings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bindings() = %v, want %v", got, want)
		}
	}
}

func TestStats_ReflectsRegistryState(t *testing.T) {
	c := container.New()
	c.Singleton("logger", func(c *container.Container) (any, error) {
		return &Logger{}, nil
	})
	c.Alias("logger", "log")
	c.Factory("id-gen", func(c *container.Container) (any, error) { return 1, nil })
	container.Resolve[*Logger](c, "logger")

	stats := c.Stats()
	if stats.Definitions != 1 {
		t.Errorf("Definitions = %d, want 1", stats.Definitions)
	}
	if stats.Singletons != 1 {
		t.Errorf("Singletons = %d, want 1 (materialized logger)", stats.Singletons)
	}
	if stats.Factories != 1 {
		t.Errorf("Factories = %d, want 1", stats.Factories)
	}
	if stats.Aliases != 1 {
		t.Errorf("Aliases = %d, want 1", stats.Aliases)
	}
	if !stats.Compiled {
		t.Error("Compiled = false after a successful Get")
	}
}

// ── Tags ──────────────────────────────────────────────────────────────────────

func TestTagged_ResolvesGroupInOrder(t *testing.T) {
	c := container.New()
	c.Instance("first", "a")
	c.Instance("second", "b")
	c.Tag([]string{"first", "second"}, "letters")

	got, err := c.Tagged("letters")
	if err != nil {
		t.Fatalf("Tagged: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Tagged = %v, want [a b]", got)
	}
}

// ── Generic helpers ───────────────────────────────────────────────────────────

func TestResolve_PanicsOnMissingBinding(t *testing.T) {
	c := container.New()
	defer func() {
		if recover() == nil {
			t.Error("Resolve on a missing binding should panic")
		}
	}()
	container.Resolve[*Logger](c, "ghost")
}

func TestMustResolve_ReportsFailure(t *testing.T) {
	c := container.New()
	if _, ok := container.MustResolve[*Logger](c, "ghost"); ok {
		t.Error("MustResolve on a missing binding should report false")
	}

	c.Instance("logger", &Logger{})
	if _, ok := container.MustResolve[*Service](c, "logger"); ok {
		t.Error("MustResolve with a mismatched type should report false")
	}
}

// ── End-to-end scenario ───────────────────────────────────────────────────────

func TestEndToEnd_TransientServiceSharedLogger(t *testing.T) {
	c := container.New()
	var built atomic.Int64
	c.Singleton("logger", func(c *container.Container) (any, error) {
		built.Add(1)
		return &Logger{Prefix: "e2e"}, nil
	})
	c.Bind("service", (*Service)(nil))

	one := container.Resolve[*Service](c, "service")
	two := container.Resolve[*Service](c, "service")

	if one == two {
		t.Error("services should be distinct instances")
	}
	if one.Logger != two.Logger {
		t.Error("services should share the identical Logger")
	}
	if got := built.Load(); got != 1 {
		t.Errorf("Logger constructed %d times, want exactly 1", got)
	}
}
