package viewstate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateMode_ExactlyOneActive(t *testing.T) {
	r := New(ModeStudent)

	require.NoError(t, r.ActivateMode(ModeDepartment))
	require.NoError(t, r.ActivateMode(ModeYear))

	assert.Equal(t, ModeYear, r.Mode())
	assert.Equal(t, ModeYear, r.Snapshot().Mode)
}

func TestActivateMode_Unknown(t *testing.T) {
	r := New(ModeStudent)

	err := r.ActivateMode("landing")
	require.Error(t, err)
	assert.Equal(t, ModeStudent, r.Mode())
}

func TestModals_IndependentAndIdempotent(t *testing.T) {
	r := New(ModeStudent)

	require.NoError(t, r.OpenModal(ModalDrilldown))
	require.NoError(t, r.OpenModal(ModalAlert))
	require.NoError(t, r.CloseModal(ModalAlert))
	require.NoError(t, r.CloseModal(ModalAlert))

	assert.True(t, r.IsOpen(ModalDrilldown), "closing alert must not affect drilldown")
	assert.False(t, r.IsOpen(ModalAlert))

	snap := r.Snapshot()
	assert.Equal(t, []ModalID{ModalDrilldown}, snap.Open)
	assert.True(t, snap.IsOpen(ModalDrilldown))
}

func TestModals_Unknown(t *testing.T) {
	r := New(ModeStudent)
	assert.Error(t, r.OpenModal("settings"))
	assert.Error(t, r.CloseModal("settings"))
}

func TestOnChange_OnlyOnEffectiveChange(t *testing.T) {
	r := New(ModeStudent)
	calls := 0
	r.OnChange(func(Snapshot) { calls++ })

	require.NoError(t, r.ActivateMode(ModeStudent))
	require.NoError(t, r.CloseModal(ModalDrilldown))
	assert.Equal(t, 0, calls)

	require.NoError(t, r.ActivateMode(ModeBatch))
	require.NoError(t, r.OpenModal(ModalDrilldown))
	assert.Equal(t, 2, calls)
}

func TestActivateMode_ConcurrentSwitches(t *testing.T) {
	r := New(ModeStudent)
	var wg sync.WaitGroup
	for _, m := range Modes() {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(m ModeID) {
				defer wg.Done()
				_ = r.ActivateMode(m)
				snap := r.Snapshot()
				_, err := ParseMode(string(snap.Mode))
				assert.NoError(t, err)
			}(m)
		}
	}
	wg.Wait()

	_, err := ParseMode(string(r.Mode()))
	assert.NoError(t, err)
}
