package luahook

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/splice/object"
)

// toLua converts an interception argument to its Lua representation.
// Reference kinds cross the boundary as userdata so Lua can pass them
// back unchanged.
func toLua(L *lua.LState, v object.Value) lua.LValue {
	switch v.Kind() {
	case object.KindNil:
		return lua.LNil
	case object.KindInt:
		return lua.LNumber(v.Int64())
	case object.KindUint:
		return lua.LNumber(v.Uint64())
	case object.KindFloat:
		return lua.LNumber(v.Float64())
	case object.KindBool:
		return lua.LBool(v.BoolVal())
	case object.KindString:
		return lua.LString(v.Str())
	default:
		ud := L.NewUserData()
		ud.Value = v
		return ud
	}
}

// fromLua converts a Lua value back to an interception value. Numbers
// come back as 8-byte ints when integral, floats otherwise; userdata
// produced by toLua round-trips exactly.
func fromLua(lv lua.LValue) object.Value {
	switch v := lv.(type) {
	case *lua.LNilType:
		return object.Nil()
	case lua.LBool:
		return object.Bool(bool(v))
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return object.Int(int64(f))
		}
		return object.Float(f)
	case lua.LString:
		return object.Str(string(v))
	case *lua.LUserData:
		if ov, ok := v.Value.(object.Value); ok {
			return ov
		}
		return object.Obj(v.Value)
	default:
		return object.Nil()
	}
}
