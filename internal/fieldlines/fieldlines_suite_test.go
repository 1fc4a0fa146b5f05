package fieldlines_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFieldLines(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FieldLines Suite")
}
