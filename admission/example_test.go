package admission_test

import (
	"fmt"
	"time"

	"github.com/facebookgo/clock"
	"github.com/lestrrat/go-admission-control/admission"
)

func Example() {
	// A simulated clock makes the example deterministic. Production
	// code can leave WithClock out and get admission.SystemClock.
	c := clock.NewMock()

	ctl, err := admission.New(5*time.Second, admission.WithClock(c))
	if err != nil {
		fmt.Println(err)
		return
	}

	for i := 0; i < 10; i++ {
		ctl.RecordSuccess()
	}
	ctl.RecordFailure()
	fmt.Println(ctl.RequestCounts(), ctl.AverageRPS())

	c.Add(4 * time.Second)
	fmt.Println(ctl.RequestCounts(), ctl.AverageRPS())

	c.Add(time.Second)
	fmt.Println(ctl.RequestCounts(), ctl.AverageRPS())
	// Output:
	// {11 10} 0
	// {11 10} 2
	// {0 0} 0
}
