package ws

import (
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	RegisterType(&JoinFrame{})
	RegisterType(&LeaveFrame{})
	RegisterType(&ChatFrame{})
	RegisterType(&TypingFrame{})
	RegisterType(&PingFrame{})
}

func RegisterType(frame Frame) {
	typeRegistry[frame.GetType()] = reflect.TypeOf(frame).Elem()
}
