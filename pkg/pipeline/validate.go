package pipeline

import (
	"fmt"

	"github.com/wehubfusion/Daedalus/pkg/capability"
	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// Validate walks the ordered stage list once, accumulating satisfied
// capabilities, and rejects a pipeline where some stage's requirement is not
// satisfied by stages scheduled strictly before it. It is a pure function of
// the stage list and runs before any engine is initialized.
func Validate(stages []Stage) error {
	satisfied := capability.NewSet()
	for _, st := range stages {
		if missing := satisfied.Missing(st.Requires()); len(missing) > 0 {
			return apperrors.Configuration(
				fmt.Sprintf("missing capabilities: %s", capability.NewSet(missing...)),
				apperrors.ErrUnsatisfiedRequirement,
			).WithStage(st.Name())
		}
		satisfied = satisfied.Union(st.Satisfies())
	}
	return nil
}
