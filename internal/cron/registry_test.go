package cron

import (
	"context"
	"testing"
)

type namedJob string

func (n namedJob) Name() string              { return string(n) }
func (n namedJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndRejectsDuplicates(t *testing.T) {
	registry, err := NewRegistry(namedJob("b"), namedJob("a"))
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := registry.Register(namedJob("a")); err == nil {
		t.Fatalf("expected duplicate name to be rejected")
	}
	if err := registry.Register(namedJob("")); err == nil {
		t.Fatalf("expected unnamed job to be rejected")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil job to be rejected")
	}

	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0].Name() != "b" || jobs[1].Name() != "a" {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	if _, ok := registry.Lookup("a"); !ok {
		t.Fatalf("lookup by name failed")
	}
	if _, ok := registry.Lookup("c"); ok {
		t.Fatalf("lookup found an unregistered job")
	}
}

func TestNewRegistryFailsOnDuplicate(t *testing.T) {
	if _, err := NewRegistry(namedJob("x"), namedJob("x")); err == nil {
		t.Fatalf("expected error")
	}
}
