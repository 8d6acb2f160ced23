package naming

import (
	"fmt"
	"strings"

	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
)

const namespaceNameMaxLength = utilvalidation.DNS1123LabelMaxLength

func validateDNS1123Label(name string, maximum int, labelKind string) error {
	if name == "" {
		return fmt.Errorf("%s name must not be empty", labelKind)
	}
	if len(name) > maximum {
		return fmt.Errorf("%s name exceeds %d characters", labelKind, maximum)
	}
	if errs := utilvalidation.IsDNS1123Label(name); len(errs) > 0 {
		return fmt.Errorf("invalid %s name: %s", labelKind, strings.Join(errs, ", "))
	}
	return nil
}

// ValidateNamespace checks that name can be used as a Kubernetes namespace.
func ValidateNamespace(name string) error {
	return validateDNS1123Label(name, namespaceNameMaxLength, "namespace")
}

// ValidateReleaseName checks a Helm release name. Helm limits names to 53
// characters so that generated resource names stay within DNS label limits.
func ValidateReleaseName(name string) error {
	return validateDNS1123Label(name, 53, "release")
}
