package vm

import "testing"

func TestMonitorEnterExit(t *testing.T) {
	jvm := NewJVM()
	thread := jvm.CreateThread()

	obj := "test-object"
	monitor := jvm.GetOrCreateMonitor(obj)

	monitor.Enter(thread)
	if err := monitor.Exit(thread); err != nil {
		t.Errorf("Exit failed: %v", err)
	}
}

func TestMonitorReentrant(t *testing.T) {
	jvm := NewJVM()
	thread := jvm.CreateThread()

	obj := "test-object"
	monitor := jvm.GetOrCreateMonitor(obj)

	monitor.Enter(thread)
	monitor.Enter(thread)
	monitor.Enter(thread)

	for i := 0; i < 3; i++ {
		if err := monitor.Exit(thread); err != nil {
			t.Errorf("Exit %d failed: %v", i+1, err)
		}
	}
}

func TestMonitorExitWithoutOwnership(t *testing.T) {
	jvm := NewJVM()
	thread := jvm.CreateThread()
	other := jvm.CreateThread()

	monitor := jvm.GetOrCreateMonitor("obj")
	monitor.Enter(thread)

	if err := monitor.Exit(other); err == nil {
		t.Error("Exit by non-owner should fail")
	}
}

func TestNativeRegistry(t *testing.T) {
	natives := []struct {
		class      string
		method     string
		descriptor string
	}{
		{"java/lang/System", "currentTimeMillis", "()J"},
		{"java/lang/System", "nanoTime", "()J"},
		{"java/lang/Math", "abs", "(I)I"},
		{"java/lang/Math", "sqrt", "(D)D"},
	}

	for _, n := range natives {
		t.Run(n.class+"."+n.method, func(t *testing.T) {
			method := Natives.Lookup(n.class, n.method, n.descriptor)
			if method == nil {
				t.Errorf("native method %s.%s%s not found", n.class, n.method, n.descriptor)
			}
		})
	}
}

func TestJVMCreateThread(t *testing.T) {
	jvm := NewJVM()

	t1 := jvm.CreateThread()
	t2 := jvm.CreateThread()

	if t1.ID() == t2.ID() {
		t.Error("threads should have unique IDs")
	}
	if jvm.GetMainThread() != t1 {
		t.Error("first thread should be main thread")
	}
}

func TestJVMIsRunning(t *testing.T) {
	jvm := NewJVM()

	if !jvm.IsRunning() {
		t.Error("new JVM should be running")
	}
	jvm.Shutdown()
	if jvm.IsRunning() {
		t.Error("JVM should not be running after shutdown")
	}
}
