package coldstart_test

import (
	"math/rand/v2"
	"testing"

	"github.com/okian/rally/internal/domain/coldstart"
	"github.com/okian/rally/internal/domain/contestant"
	. "github.com/smartystreets/goconvey/convey"
)

func peer(id contestant.ID, survey, rating float64, recorded int) *contestant.Contestant {
	c, err := contestant.New(id, "", 45, survey)
	if err != nil {
		panic(err)
	}
	c.Rating = rating
	for range recorded {
		c.MarkRecorded()
	}
	return c
}

func TestEstimate(t *testing.T) {
	Convey("Given a cold-start estimator", t, func() {
		est := coldstart.NewEstimator()
		newcomer := peer(100, 4.5, 1000, 0)

		Convey("When one experienced peer has the same survey rating", func() {
			pool := []*contestant.Contestant{peer(0, 4.5, 1200, 10)}
			got, ok := est.Estimate(pool, newcomer)

			Convey("Then the estimate is that peer's rating", func() {
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, 1200.0)
			})
		})

		Convey("When peers are closer and further away", func() {
			pool := []*contestant.Contestant{
				peer(0, 4.5, 1200, 10), // weight 2
				peer(1, 5.5, 1500, 10), // weight 1
				peer(2, 6.0, 3000, 10), // outside window
				peer(3, 4.5, 9000, 4),  // not experienced
			}
			got, ok := est.Estimate(pool, newcomer)

			Convey("Then it is the normalized weighted average", func() {
				So(ok, ShouldBeTrue)
				So(got, ShouldAlmostEqual, (2*1200.0+1*1500.0)/3, 1e-9)
			})
		})

		Convey("When only one weighted peer sits among ineligible ones", func() {
			pool := []*contestant.Contestant{
				peer(0, 5.2, 1461.5, 10), // weight 1.3
				peer(1, 6.0, 3000, 10),   // outside window
				peer(2, 4.5, 700, 2),     // not experienced
			}
			got, ok := est.Estimate(pool, newcomer)

			Convey("Then the estimate is exactly that peer's rating", func() {
				So(ok, ShouldBeTrue)
				So(got, ShouldAlmostEqual, 1461.5, 1e-9)
			})
		})

		Convey("When nobody is similar and experienced", func() {
			pool := []*contestant.Contestant{
				peer(0, 8.0, 2000, 20),
				peer(1, 4.5, 1100, 4),
			}
			got, ok := est.Estimate(pool, newcomer)

			Convey("Then the provisional rating is kept", func() {
				So(ok, ShouldBeFalse)
				So(got, ShouldEqual, 1000.0)
			})
		})

		Convey("When the pool is empty", func() {
			got, ok := est.Estimate(nil, newcomer)
			So(ok, ShouldBeFalse)
			So(got, ShouldEqual, newcomer.Rating)
		})

		Convey("When the newcomer is already in the pool", func() {
			self := peer(7, 4.5, 1000, 10)
			got, ok := coldstart.NewEstimator(coldstart.WithMinRecorded(0)).Estimate([]*contestant.Contestant{self}, self)
			So(ok, ShouldBeFalse)
			So(got, ShouldEqual, 1000.0)
		})

		Convey("When pools are random", func() {
			rng := rand.New(rand.NewPCG(9, 10))

			Convey("Then the estimate stays within the weighted peers' range", func() {
				for range 500 {
					var pool []*contestant.Contestant
					for i := range 1 + rng.IntN(15) {
						pool = append(pool, peer(contestant.ID(i), 3+rng.Float64()*3, 500+rng.Float64()*2000, rng.IntN(10)))
					}
					got, ok := est.Estimate(pool, newcomer)
					lo, hi, found := 1e18, -1e18, false
					for _, p := range pool {
						if est.Weight(p, newcomer) > 0 {
							lo = min(lo, p.Rating)
							hi = max(hi, p.Rating)
							found = true
						}
					}
					So(ok, ShouldEqual, found)
					switch {
					case found && lo == hi:
						So(got, ShouldAlmostEqual, lo, 1e-9)
					case found:
						So(got, ShouldBeGreaterThanOrEqualTo, lo)
						So(got, ShouldBeLessThanOrEqualTo, hi)
					default:
						So(got, ShouldEqual, newcomer.Rating)
					}
				}
			})
		})
	})
}

func TestWeight(t *testing.T) {
	Convey("Given the survey weight", t, func() {
		est := coldstart.NewEstimator()
		newcomer := peer(100, 5.0, 1000, 0)

		So(est.Weight(peer(0, 5.0, 0, 5), newcomer), ShouldEqual, 2.0)
		So(est.Weight(peer(0, 5.5, 0, 5), newcomer), ShouldEqual, 1.5)
		So(est.Weight(peer(0, 4.0, 0, 5), newcomer), ShouldEqual, 1.0)
		So(est.Weight(peer(0, 6.01, 0, 5), newcomer), ShouldEqual, 0.0)
		So(est.Weight(peer(0, 5.0, 0, 4), newcomer), ShouldEqual, 0.0)
	})
}
