package result

import "fmt"

// Counts aggregates leaf outcomes bottom-up. At any subtree,
// Right+Wrong+Exceptions+Skipped equals the number of evaluated leaves.
type Counts struct {
	Right      int
	Wrong      int
	Exceptions int
	Skipped    int
}

// Tally records a single leaf status. Pending outcomes are not counted.
func (c *Counts) Tally(status Status) {
	switch status {
	case StatusSuccess:
		c.Right++
	case StatusFailure:
		c.Wrong++
	case StatusError:
		c.Exceptions++
	case StatusSkipped:
		c.Skipped++
	}
}

// Add merges another set of counts into this one.
func (c *Counts) Add(other Counts) {
	c.Right += other.Right
	c.Wrong += other.Wrong
	c.Exceptions += other.Exceptions
	c.Skipped += other.Skipped
}

// Total returns the number of evaluated leaves.
func (c Counts) Total() int {
	return c.Right + c.Wrong + c.Exceptions + c.Skipped
}

func (c Counts) String() string {
	return fmt.Sprintf("%d right, %d wrong, %d exceptions, %d skipped",
		c.Right, c.Wrong, c.Exceptions, c.Skipped)
}
