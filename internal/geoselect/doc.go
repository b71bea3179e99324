// Package geoselect implements the map's province drill-down as a pure
// reducer over (view state, event) and derives a render plan from the
// boundary set, the station snapshot, and the view state.
//
// One invariant couples selection and zoom: below the disclosure zoom no
// province is selected. Every transition returned by [Controller.Apply]
// satisfies it, including clicks, which land the viewport at or above the
// disclosure zoom when they select.
package geoselect
