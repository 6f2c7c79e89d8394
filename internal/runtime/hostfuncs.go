package runtime

import (
	"context"
	"log/slog"

	"github.com/risor-io/risor/object"
)

// makeDefineClassFn creates the "define_class" host function.
//
// define_class(name, base) → nil
// define_class({name, base, methods, properties, signals, constants}) → nil
//
// In the map form, methods/properties/constants map member name to type
// and signals is a list of names.
func makeDefineClassFn(db *TypeDB) *object.Builtin {
	return object.NewBuiltin("define_class", func(ctx context.Context, args ...object.Object) object.Object {
		switch len(args) {
		case 1:
			m, err := extractMap(args[0])
			if err != nil {
				return object.Errorf("define_class: %v", err)
			}
			name := getString(m, "name")
			if name == "" {
				return object.Errorf("define_class: name is required")
			}
			ti := db.Define(name, getString(m, "base"))
			for member, typ := range getStringMap(m, "methods") {
				ti.Method(member, typ)
			}
			for member, typ := range getStringMap(m, "properties") {
				ti.Property(member, typ)
			}
			for member, typ := range getStringMap(m, "constants") {
				ti.Constant(member, typ)
			}
			for _, sig := range getStringList(m, "signals") {
				ti.Signal(sig)
			}
			return object.Nil
		case 2:
			name, err := toString(args[0])
			if err != nil {
				return object.Errorf("define_class: name: %v", err)
			}
			base, err := toString(args[1])
			if err != nil {
				return object.Errorf("define_class: base: %v", err)
			}
			db.Define(name, base)
			return object.Nil
		}
		return object.NewArgsRangeError("define_class", 1, 2, len(args))
	})
}

// makeDefineMemberFn creates one of the member-declaring host functions.
//
// define_method(class, name, returns="Variant") → nil
// define_property(class, name, type="Variant") → nil
// define_constant(class, name, type="Variant") → nil
// define_signal(class, name) → nil
func makeDefineMemberFn(db *TypeDB, fn string, kind MemberKind) *object.Builtin {
	return object.NewBuiltin(fn, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 || len(args) > 3 {
			return object.NewArgsRangeError(fn, 2, 3, len(args))
		}
		class, err := toString(args[0])
		if err != nil {
			return object.Errorf("%s: class: %v", fn, err)
		}
		name, err := toString(args[1])
		if err != nil {
			return object.Errorf("%s: name: %v", fn, err)
		}
		typ := "Variant"
		if len(args) == 3 {
			if typ, err = toString(args[2]); err != nil {
				return object.Errorf("%s: type: %v", fn, err)
			}
		}
		ti, ok := db.Type(class)
		if !ok {
			return object.Errorf("%s: class %q is not defined", fn, class)
		}
		switch kind {
		case MemberMethod:
			ti.Method(name, typ)
		case MemberProperty:
			ti.Property(name, typ)
		case MemberConstant:
			ti.Constant(name, typ)
		case MemberSignal:
			ti.Signal(name)
		}
		return object.Nil
	})
}

// makeDefineFunctionFn creates "define_function".
//
// define_function(name, returns="Variant") → nil
func makeDefineFunctionFn(db *TypeDB) *object.Builtin {
	return object.NewBuiltin("define_function", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return object.NewArgsRangeError("define_function", 1, 2, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("define_function: name: %v", err)
		}
		ret := "Variant"
		if len(args) == 2 {
			if ret, err = toString(args[1]); err != nil {
				return object.Errorf("define_function: returns: %v", err)
			}
		}
		db.Function(name, ret)
		return object.Nil
	})
}

// makeDefineSingletonFn creates "define_singleton".
//
// define_singleton(name, type) → nil
func makeDefineSingletonFn(db *TypeDB) *object.Builtin {
	return object.NewBuiltin("define_singleton", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("define_singleton", 2, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("define_singleton: name: %v", err)
		}
		typ, err := toString(args[1])
		if err != nil {
			return object.Errorf("define_singleton: type: %v", err)
		}
		db.Singleton(name, typ)
		return object.Nil
	})
}

// makeIsKnownTypeFn creates "is_known_type", which checks the types
// declared so far and the engine built-ins.
//
// is_known_type(name) → bool
func makeIsKnownTypeFn(db *TypeDB) *object.Builtin {
	return object.NewBuiltin("is_known_type", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("is_known_type", 1, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("is_known_type: %v", err)
		}
		return object.NewBool(db.IsKnownType(name) || Builtins().IsKnownType(name))
	})
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "types_script")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "types_script")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "types_script")
}
