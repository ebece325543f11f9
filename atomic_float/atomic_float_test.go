package atomic_float

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAtomicAdd(t *testing.T) {
	Convey("When AtomicFloat64 is added to", t, func() {
		Convey("When multiple writers add concurrently", func() {
			af := NewAtomicFloat64(0)
			numOps := 3000
			numWriters := 50

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(numWriters)
			for i := 0; i < numWriters; i++ {
				go func() {
					defer wg.Done()
					<-start
					for i := 0; i < numOps; i++ {
						af.Add(1.0)
					}
				}()
			}

			close(start)
			wg.Wait()
			So(af.AtomicRead(), ShouldEqual, float64(numOps*numWriters))
		})

		Convey("When writers increment and decrement using single attempts", func() {
			af := NewAtomicFloat64(0)
			numOps := 3000
			numWriters := 50

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(numWriters * 2)
			writer := func(addend float64) {
				defer wg.Done()
				<-start
				for i := 0; i < numOps; i++ {
					for succeeded := false; !succeeded; _, succeeded = af.AtomicAdd(addend) {
					}
				}
			}
			for i := 0; i < numWriters; i++ {
				go writer(1.0)
				go writer(-1.0)
			}

			close(start)
			wg.Wait()
			So(af.AtomicRead(), ShouldEqual, 0.0)
		})

		Convey("When the value is set", func() {
			af := NewAtomicFloat64(2.5)
			af.AtomicSet(-4)
			So(af.AtomicRead(), ShouldEqual, -4.0)
		})
	})
}
