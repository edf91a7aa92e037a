// File: internal/webdriver/conditions_test.go
package webdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
)

func TestConditionString(t *testing.T) {
	assert.Equal(t, "present", CondPresent.String())
	assert.Equal(t, "visible", CondVisible.String())
	assert.Equal(t, "clickable", CondClickable.String())
	assert.Equal(t, "selectable", CondSelectable.String())
	assert.Equal(t, "unknown", Condition(99).String())
}

func TestConditionCheck(t *testing.T) {
	testCases := []struct {
		name      string
		cond      Condition
		displayed bool
		enabled   bool
		want      bool
	}{
		{"present holds for hidden element", CondPresent, false, false, true},
		{"visible needs displayed", CondVisible, false, true, false},
		{"visible holds when displayed", CondVisible, true, false, true},
		{"clickable needs displayed", CondClickable, false, true, false},
		{"clickable needs enabled", CondClickable, true, false, false},
		{"clickable holds when both", CondClickable, true, true, true},
		{"selectable ignores display", CondSelectable, false, true, true},
		{"selectable needs enabled", CondSelectable, false, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			driver := newFakeDriver()
			elem := newFakeElement()
			elem.displayed = tc.displayed
			elem.enabled = tc.enabled
			driver.add(selenium.ByID, "target", elem)

			got, err := tc.cond.check(selenium.ByID, "target")(driver)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConditionCheckMissReportsFalseNotError(t *testing.T) {
	// A lookup miss must keep the poll loop alive instead of aborting it.
	driver := newFakeDriver()

	got, err := CondPresent.check(selenium.ByID, "absent")(driver)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestGoneCheck(t *testing.T) {
	driver := newFakeDriver()

	got, err := goneCheck(selenium.ByID, "absent")(driver)
	require.NoError(t, err)
	assert.True(t, got, "absent element counts as gone")

	elem := newFakeElement()
	driver.add(selenium.ByID, "spinner", elem)
	got, err = goneCheck(selenium.ByID, "spinner")(driver)
	require.NoError(t, err)
	assert.False(t, got, "displayed element is not gone")

	elem.displayed = false
	got, err = goneCheck(selenium.ByID, "spinner")(driver)
	require.NoError(t, err)
	assert.True(t, got, "hidden element counts as gone")
}
