package kube_test

import (
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func apiAlreadyExists(name string) error {
	return apierrors.NewAlreadyExists(schema.GroupResource{Resource: "namespaces"}, name)
}
