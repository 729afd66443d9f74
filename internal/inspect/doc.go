// Package inspect classifies media files ahead of encoding.
//
// The Inspector queries ffprobe for the primary video stream's codec, bitrate,
// and frame count, deriving the frame count from duration and frame rate when
// ffprobe does not report it directly. A missing ffprobe binary is fatal for
// the whole run; a probe that runs but yields no usable video stream degrades
// to a zeroed MediaProbe so the planner can default to copying.
package inspect
