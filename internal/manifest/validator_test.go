package manifest

import (
	"testing"

	"github.com/spf13/afero"
)

func TestValidateFile_Valid(t *testing.T) {
	tests := []struct {
		file string
		kind Kind
	}{
		{"valid-lock.json", KindLock},
		{"valid-manifest.json", KindManifest},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result, err := ValidateFile(osFs(), tt.kind, testPath(tt.file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) error: %v", tt.file, err)
			}
			if !result.Valid {
				t.Errorf("expected valid, got invalid with %d issues:", len(result.Issues))
				for _, issue := range result.Issues {
					t.Errorf("  path=%s keyword=%s message=%s", issue.Path, issue.Keyword, issue.Message)
				}
			}
		})
	}
}

func TestValidateFile_Invalid(t *testing.T) {
	tests := []struct {
		file string
		kind Kind
		desc string
	}{
		{"invalid-lock-missing-packages.json", KindLock, "missing packages"},
		{"invalid-lock-bad-require.json", KindLock, "non-string constraint and nameless package"},
		{"invalid-manifest-bad-name.json", KindManifest, "name violates pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result, err := ValidateFile(osFs(), tt.kind, testPath(tt.file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) unexpected error: %v", tt.file, err)
			}
			if result.Valid {
				t.Errorf("expected invalid for %s (%s), but got valid", tt.file, tt.desc)
			}
			if len(result.Issues) == 0 {
				t.Errorf("expected at least one issue for %s (%s)", tt.file, tt.desc)
			}
		})
	}
}

func TestValidate_IssueFields(t *testing.T) {
	result, err := ValidateFile(osFs(), KindLock, testPath("invalid-lock-bad-require.json"))
	if err != nil {
		t.Fatalf("ValidateFile error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result")
	}

	hasNameIssue := false
	for _, issue := range result.Issues {
		if issue.Message == "" {
			t.Errorf("issue at %s has an empty message", issue.Path)
		}
		if issue.Path == "/packages/1" && issue.Keyword == "required" {
			hasNameIssue = true
		}
	}
	if !hasNameIssue {
		t.Errorf("expected a required issue at /packages/1, got %+v", result.Issues)
	}
}

func TestValidateFile_InvalidJSON(t *testing.T) {
	_, err := ValidateFile(osFs(), KindLock, testPath("invalid-not-json.json"))
	if err == nil {
		t.Fatal("expected error for malformed input, got nil")
	}
}

func TestValidateFile_NotFound(t *testing.T) {
	_, err := ValidateFile(afero.NewMemMapFs(), KindLock, "composer.lock")
	if err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestValidate_SchemasCompile(t *testing.T) {
	for _, kind := range []Kind{KindLock, KindManifest} {
		schema, err := getSchema(kind)
		if err != nil {
			t.Fatalf("getSchema(%s) error: %v", kind, err)
		}
		if schema == nil {
			t.Fatalf("getSchema(%s) returned nil schema", kind)
		}
	}
	if _, err := getSchema("bogus"); err == nil {
		t.Error("getSchema(bogus) should fail")
	}
}

func TestValidate_JSONEscapes(t *testing.T) {
	result, err := Validate(KindManifest, []byte(`{"name": "acme\/app", "require": {"acme\/http": "^2.0"}}`))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid manifest, got issues %+v", result.Issues)
	}
}
