// Package stimulus reconstructs the visual stimuli shown during imaging
// sessions from the parameters stored with each stimulus condition.
//
// Trippy movies are rebuilt from a packed phase movie (either stored or
// synthesized from a seed) in four stages:
//
//   - temporal upsampling by ceil(L/4) with zero insertion,
//   - valid convolution with a Hann kernel of length L,
//   - a linear phase drift that makes the pattern move,
//   - separable Gaussian upscaling of the node grid in the frequency domain.
//
// The last stage is frozen: reconstructed movies are compared pixel for
// pixel against the movies recorded during the experiments, so its numeric
// behaviour must not change.
package stimulus
