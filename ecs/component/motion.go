package component

import "github.com/milk9111/platformer/motion"

// Motion holds the tuning of a character and its controller once bound.
type Motion struct {
	Config     motion.Config
	Controller *motion.Controller
	// Failed is set when binding the controller returned an error so the
	// motion system does not retry every frame.
	Failed bool
}

var MotionComponent = NewComponent[Motion]()
