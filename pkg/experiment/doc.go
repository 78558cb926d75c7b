// Package experiment discovers benchmark logs, decodes the experiment
// parameters from their directory names and arranges them into ordered groups
// and parameter matrices.
//
// An experiment directory is named
//
//	<file>-<transport>-<bandwidth>-<congestion_control>-<feedback_frequency>
//
// for example "video.mkv-udp-1000000-scream-100ms", and holds the ssim.log,
// psnr.log and scream.log files of a single run.
package experiment
