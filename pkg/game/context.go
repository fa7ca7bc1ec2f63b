package game

// Context bundles every collaborator an interpreter talks to.
// Interpreters never reach for globals; they only see what is in here.
type Context struct {
	Switches     Switches
	Variables    Variables
	SelfSwitches SelfSwitches
	Timer        Timer
	Party        Party
	Actors       Actors
	Troop        Troop
	Map          Map
	Player       Player
	Message      Message
	Screen       Screen
	Audio        Audio
	System       System
	Battle       Battle
	Scene        Scene
	Input        Input
	Video        Video
	Images       Images
	Frames       Frames
	Plugins      Plugins
	Temp         Temp
	Data         Database
	Eval         Evaluator
}
