// Package synth generates the synthetic panel datasets.
//
// Every panel is drawn from one shared random stream in a fixed order:
//
//	n_obs     = randint(MinObs, MaxObs)
//	features  = n_obs x Vars standard normals, row-major, rounded to 2 decimals
//	labels    = shuffle([0]*n_control + [1]*n_treat)
//
// with n_control = max(ControlFloor, n_obs/2). Panels are generated in
// dataset_id order, so the whole dataset is a pure function of the seed.
package synth
