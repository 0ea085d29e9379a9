package extract

const sampleRFP = `REQUEST FOR PROPOSAL - TEST DOCUMENT

CLIENT INFORMATION
Client: Test Corporation Inc.
Project: Website Redesign Project

PROJECT DESCRIPTION
We are seeking proposals for a complete website redesign including modern UI/UX design, responsive layout, and content management system integration.

SCOPE OF WORK
• Brand strategy and positioning
• UI/UX design for 10 pages
• Responsive web development
• CMS integration (WordPress)
• SEO optimization
• Content migration from old site
• Training for content editors

EVALUATION CRITERIA
Proposals will be evaluated based on:
1. Technical approach and methodology (40%)
2. Team experience and qualifications (30%)
3. Cost and value proposition (20%)
4. Proposed timeline and milestones (10%)

IMPORTANT DATES
Submission Deadline: March 15, 2026
Project Start Date: April 1, 2026
Expected Completion: July 31, 2026`
