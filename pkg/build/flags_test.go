// SPDX-License-Identifier: MIT
package build

import "testing"

func TestInitializeDefaults(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	flags := GetBuildFlags()
	if flags.Name == "" {
		t.Error("build name should never be empty")
	}
	if flags.Version == "" {
		t.Error("build version should never be empty")
	}
}

func TestInitializeAppliesLdflags(t *testing.T) {
	buildName = "aura-test"
	buildVersion = "1.2.3"
	defer func() {
		buildName = ""
		buildVersion = ""
	}()

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	flags := GetBuildFlags()
	if flags.Name != "aura-test" {
		t.Errorf("Name = %q, want aura-test", flags.Name)
	}
	if flags.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", flags.Version)
	}
}
