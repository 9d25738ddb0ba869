package ir

import (
	"fmt"
)

// ValidationError describes one violated interface invariant.
type ValidationError struct {
	Kind     ErrorKind
	Category Category
	Name     string
	Message  string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q: %s", e.Category, e.Name, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Validator checks an Interface against the invariants every stage relies
// on: unique indices per category, unique global names, bounded names and
// category-appropriate types.
type Validator struct {
	kind    ShaderKind
	iface   *Interface
	errors  []ValidationError
	globals map[string]Category
}

// ValidateInterface checks the interface of a shader of the given kind.
// The returned slice is empty when the interface is valid.
func ValidateInterface(kind ShaderKind, iface *Interface) []ValidationError {
	v := &Validator{
		kind:    kind,
		iface:   iface,
		globals: make(map[string]Category),
	}
	v.validate()
	return v.errors
}

func (v *Validator) validate() {
	if !v.kind.IsValid() {
		v.addError(ErrInvalidData, CategoryInput, "", fmt.Sprintf("invalid shader kind %d", v.kind))
	}

	v.validateVars(CategoryInput, v.iface.Inputs, false)
	v.validateVars(CategoryOutput, v.iface.Outputs, false)
	v.validateVars(CategoryTexture, v.iface.Textures, true)

	// Members of all constant buffers share one index namespace.
	seen := make(map[uint16]string)
	for _, cb := range v.iface.ConstantBuffers {
		v.validateName(CategoryUniform, cb.Name)
		v.claimGlobal(CategoryUniform, cb.Name)
		for _, m := range cb.Members {
			v.validateVar(CategoryUniform, m, false)
			v.claimGlobal(CategoryUniform, m.Name)
			if prev, dup := seen[m.Index]; dup {
				v.addError(ErrRedeclaration, CategoryUniform, m.Name,
					fmt.Sprintf("index %d already used by %q", m.Index, prev))
				continue
			}
			seen[m.Index] = m.Name
		}
	}
}

func (v *Validator) validateVars(cat Category, vars []Variable, texture bool) {
	seenIndex := make(map[uint16]string, len(vars))
	seenName := make(map[string]struct{}, len(vars))
	for _, variable := range vars {
		v.validateVar(cat, variable, texture)
		if cat == CategoryTexture {
			v.claimGlobal(cat, variable.Name)
		} else {
			if _, dup := seenName[variable.Name]; dup {
				v.addError(ErrRedeclaration, cat, variable.Name, "name already declared")
			}
			seenName[variable.Name] = struct{}{}
		}
		if prev, dup := seenIndex[variable.Index]; dup {
			v.addError(ErrRedeclaration, cat, variable.Name,
				fmt.Sprintf("index %d already used by %q", variable.Index, prev))
			continue
		}
		seenIndex[variable.Index] = variable.Name
	}
}

func (v *Validator) validateVar(cat Category, variable Variable, texture bool) {
	v.validateName(cat, variable.Name)
	switch {
	case !variable.Type.IsValid():
		v.addError(ErrInvalidData, cat, variable.Name, fmt.Sprintf("invalid type %d", variable.Type))
	case texture && !variable.Type.IsTexture():
		v.addError(ErrTypeMismatch, cat, variable.Name, fmt.Sprintf("%s is not a texture type", variable.Type))
	case !texture && !variable.Type.IsValue():
		v.addError(ErrTypeMismatch, cat, variable.Name, fmt.Sprintf("%s cannot be used for an %s", variable.Type, cat))
	case IsPosition(v.kind, cat, variable) && variable.Type != TypeFloat4:
		v.addError(ErrTypeMismatch, cat, variable.Name,
			fmt.Sprintf("index %d is the position and must be float4, not %s", PositionIndex, variable.Type))
	}
}

func (v *Validator) validateName(cat Category, name string) {
	if name == "" {
		v.addError(ErrInvalidData, cat, name, "empty name")
		return
	}
	if len(name) > MaxNameLength {
		v.addError(ErrInvalidData, cat, name, fmt.Sprintf("name longer than %d bytes", MaxNameLength))
	}
}

// claimGlobal records a name in the shared texture/uniform namespace.
func (v *Validator) claimGlobal(cat Category, name string) {
	if prev, dup := v.globals[name]; dup {
		v.addError(ErrRedeclaration, cat, name, fmt.Sprintf("name already declared as %s", prev))
		return
	}
	v.globals[name] = cat
}

func (v *Validator) addError(kind ErrorKind, cat Category, name, msg string) {
	v.errors = append(v.errors, ValidationError{
		Kind:     kind,
		Category: cat,
		Name:     name,
		Message:  msg,
	})
}

// AsError converts the first validation error into a pipeline error for the
// given phase, or returns nil when errs is empty.
func AsError(phase Phase, errs []ValidationError) *Error {
	if len(errs) == 0 {
		return nil
	}
	e := errs[0]
	kind := e.Kind
	if phase == PhaseCodec {
		kind = ErrInvalidData
	}
	return Errorf(phase, kind, "%s", e.Error())
}
