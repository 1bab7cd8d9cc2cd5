package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOperatorCanAccess(t *testing.T) {
	home := uuid.New()
	current := uuid.New()
	other := uuid.New()

	t.Run("master reaches every unit", func(t *testing.T) {
		op := &Operator{Master: true}
		assert.True(t, op.CanAccess(home))
		assert.True(t, op.CanAccess(other))
	})

	t.Run("home unit", func(t *testing.T) {
		op := &Operator{UnitID: home}
		assert.True(t, op.CanAccess(home))
		assert.False(t, op.CanAccess(other))
	})

	t.Run("current unit extends the scope", func(t *testing.T) {
		op := &Operator{UnitID: home, CurrentUnitID: &current}
		assert.True(t, op.CanAccess(home))
		assert.True(t, op.CanAccess(current))
		assert.False(t, op.CanAccess(other))
	})

	t.Run("no current unit set", func(t *testing.T) {
		op := &Operator{UnitID: home}
		assert.False(t, op.CanAccess(current))
	})
}
