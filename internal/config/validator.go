package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	tperrors "github.com/tatoeba/tatoprov/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern     = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	sshGitPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+:[a-zA-Z0-9._/~-]+$`)
	debPackagePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)
	unixUserPattern   = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
)

// validatorInstance configures and returns the shared validator used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("abs_path", func(fl validator.FieldLevel) bool {
			p := fl.Field().String()
			return p != "" && filepath.IsAbs(p) && filepath.Clean(p) == p
		})

		_ = v.RegisterValidation("deb_package", func(fl validator.FieldLevel) bool {
			return debPackagePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("unix_user", func(fl validator.FieldLevel) bool {
			return unixUserPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("git_url", func(fl validator.FieldLevel) bool {
			urlStr := fl.Field().String()
			if urlStr == "" {
				return true
			}
			if strings.TrimSpace(urlStr) == "" {
				return false
			}

			if parsedURL, err := url.Parse(urlStr); err == nil {
				scheme := strings.ToLower(parsedURL.Scheme)
				if (scheme == "http" || scheme == "https") && parsedURL.Host != "" {
					return true
				}
				if scheme == "file" && parsedURL.Path != "" {
					return true
				}
			}

			if sshGitPattern.MatchString(urlStr) {
				return true
			}

			return filepath.IsAbs(urlStr) && !strings.Contains(urlStr, "\x00")
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns the configured validator for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}

// ValidateConfig performs schema and cross-field validation on the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return tperrors.NewValidationError("config", "configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	seen := map[string]string{}
	for field, path := range map[string]string{
		"paths.binary":        cfg.Paths.Binary,
		"paths.tool":          cfg.Paths.Tool,
		"paths.unit":          cfg.Paths.Unit,
		"paths.config":        cfg.Paths.Config,
		"paths.defaults":      cfg.Paths.Defaults,
		"data.ngrams_db_file": cfg.Data.DBFile,
	} {
		if other, dup := seen[path]; dup {
			a, b := field, other
			if b < a {
				a, b = b, a
			}
			return tperrors.NewValidationError(b, fmt.Sprintf("path %s is also used by %s", path, a), nil)
		}
		seen[path] = field
	}

	for _, pkg := range cfg.Packages.Transient {
		for _, req := range cfg.Packages.Required {
			if pkg == req {
				return tperrors.NewValidationError("packages.transient", fmt.Sprintf("package %q is also required; it would be removed after the build", pkg), nil)
			}
		}
	}

	return nil
}

// convertValidationError normalizes validator errors into validation errors
// keyed by their YAML path.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		if ve.Param() != "" {
			msg = fmt.Sprintf("%s (%s)", msg, ve.Param())
		}
		return tperrors.NewValidationError(field, msg, err)
	}

	return tperrors.NewValidationError("config", err.Error(), err)
}

func yamlFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	return ns
}
