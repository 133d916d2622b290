package hamiltonian_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHamiltonian(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Hamiltonian Suite")
}
